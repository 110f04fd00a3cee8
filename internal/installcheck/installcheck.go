package installcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/extract"
)

const (
	Title          = "Docling Installation Verification Test"
	SuccessMessage = "[SUCCESS] All tests passed! Docling is correctly installed"
	WarningMessage = "[WARNING] Some tests failed, please check installation"
)

var rule = strings.Repeat("=", 50)

// Check is one verification step. Describe is printed before it runs; Passed or
// Failed (with the error appended) right after.
type Check struct {
	Name     string
	Describe string
	Passed   string
	Failed   string
	Fn       func(ctx context.Context) error
}

// Outcome is the result of one check.
type Outcome struct {
	Name   string
	Passed bool
	Err    error
}

// Report holds the outcomes in the order the checks ran.
type Report struct {
	Outcomes []Outcome
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, o := range r.Outcomes {
		if !o.Passed {
			return false
		}
	}
	return true
}

// ExitCode is 0 when every check passed and 1 otherwise.
func (r Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

// DefaultChecks verifies the engine's components resolve and that a converter with
// no special configuration can be instantiated. A nil engine fails both.
func DefaultChecks(engine extract.Engine, logger *slog.Logger) []Check {
	return []Check{
		{
			Name:     "Import Test",
			Describe: "Testing imports...",
			Passed:   "All modules imported successfully",
			Failed:   "Import failed",
			Fn: func(ctx context.Context) error {
				if engine == nil {
					return common.NewAppError(common.CodeEngineUnavailable, "no conversion engine configured", common.ErrInvalidInput)
				}
				return engine.Check(ctx)
			},
		},
		{
			Name:     "Functionality Test",
			Describe: "Testing basic functionality...",
			Passed:   "DocumentConverter created successfully",
			Failed:   "Functionality test failed",
			Fn: func(ctx context.Context) error {
				_, err := extract.NewDocumentConverter(ctx, engine, extract.WithLogger(logger))
				return err
			},
		},
	}
}

// Run prints the header, runs every check in order regardless of earlier failures,
// then prints the summary.
func Run(ctx context.Context, w io.Writer, logger *slog.Logger, checks []Check) Report {
	if logger == nil {
		logger = slog.Default()
	}
	p := printer{w: w}
	p.line(rule)
	p.line(Title)
	p.line(rule)

	var report Report
	for i, c := range checks {
		if i > 0 {
			p.line("")
		}
		p.line(fmt.Sprintf("%s %s", constants.CheckStatusTest, c.Describe))

		start := time.Now()
		err := runCheck(ctx, c)
		if err != nil {
			p.line(fmt.Sprintf("%s %s: %s", constants.CheckStatusFail, c.Failed, common.ErrorMessage(err)))
			logger.Error("check failed", "check", c.Name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		} else {
			p.line(fmt.Sprintf("%s %s", constants.CheckStatusPass, c.Passed))
			logger.Debug("check passed", "check", c.Name, "duration_ms", time.Since(start).Milliseconds())
		}
		report.Outcomes = append(report.Outcomes, Outcome{Name: c.Name, Passed: err == nil, Err: err})
	}

	p.line("")
	p.line(rule)
	p.line("Test Results Summary:")
	p.line(rule)
	for _, o := range report.Outcomes {
		status := constants.CheckStatusPass
		if !o.Passed {
			status = constants.CheckStatusFail
		}
		p.line(fmt.Sprintf("%s: %s", o.Name, status))
	}

	p.line("")
	if report.Passed() {
		p.line(SuccessMessage)
	} else {
		p.line(WarningMessage)
	}
	if p.err != nil {
		logger.Warn("failed to write report", "error", p.err)
	}
	return report
}

func runCheck(ctx context.Context, c Check) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.FromPanic(r)
		}
	}()
	if c.Fn == nil {
		return fmt.Errorf("check %q has nothing to run", c.Name)
	}
	return c.Fn(ctx)
}

// printer keeps the first write error so the report loop stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}
