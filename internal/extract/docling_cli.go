package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/ocr"
)

// DoclingCLI converts documents by running the docling command line tool.
type DoclingCLI struct {
	bin     string
	backend PDFBackend
	runner  ocr.Runner
	logger  *slog.Logger
}

func NewDoclingCLI(bin string, backend PDFBackend, logger *slog.Logger) *DoclingCLI {
	if bin == "" {
		bin = "docling"
	}
	if backend == "" {
		backend = BackendPyPdfium
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DoclingCLI{bin: bin, backend: backend, runner: ocr.ExecRunner{}, logger: logger}
}

// WithRunner swaps the command runner, mainly for tests.
func (d *DoclingCLI) WithRunner(r ocr.Runner) *DoclingCLI {
	d.runner = r
	return d
}

func (d *DoclingCLI) Name() string { return constants.EngineDocling }

// Check runs `docling --version`, which imports the converter, the format and pipeline
// option models and the PDF backends.
func (d *DoclingCLI) Check(ctx context.Context) error {
	out, errb, err := d.runner.Run(ctx, d.bin, d.logger, "--version")
	if err != nil {
		return fmt.Errorf("%s --version: %w%s", d.bin, err, stderrTail(errb))
	}
	d.logger.Debug("docling available", "version", firstLine(string(out)))
	return nil
}

func (d *DoclingCLI) Convert(ctx context.Context, path string, opts FormatOptions) (*ConversionResult, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	opt := opts.For(format)
	backend := opts.For(constants.PDF).Backend
	if backend == "" {
		backend = d.backend
	}

	outDir, err := os.MkdirTemp("", "docparse-docling-*")
	if err != nil {
		return nil, common.NewAppError(common.CodeConversion, "create output dir", err)
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			d.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(outDir)

	args := doclingArgs(path, outDir, backend, opt.Pipeline)
	_, errb, err := d.runner.Run(ctx, d.bin, d.logger, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("docling: %w", ctx.Err())
		}
		return nil, common.NewAppError(common.CodeConversion, "docling conversion failed", fmt.Errorf("%w%s", err, stderrTail(errb)))
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	md, err := os.ReadFile(filepath.Join(outDir, stem+".md"))
	if err != nil {
		return nil, common.NewAppError(common.CodeInvalidOutput, "docling produced no markdown", err)
	}

	res := &ConversionResult{
		Document: Document{Markdown: string(md)},
		Input:    InputDocument{Path: path},
	}

	raw, err := os.ReadFile(filepath.Join(outDir, stem+".json"))
	switch {
	case errors.Is(err, os.ErrNotExist):
		res.Warnings = append(res.Warnings, "docling produced no json export; format and pages unknown")
	case err != nil:
		return nil, common.NewAppError(common.CodeInvalidOutput, "read docling json export", err)
	default:
		info, err := parseDoclingDocument(raw)
		if err != nil {
			return nil, err
		}
		res.Input.Format = info.Format
		res.Document.Pages = info.Pages
	}
	return res, nil
}

func doclingArgs(path, outDir string, backend PDFBackend, p PipelineOptions) []string {
	args := []string{
		path,
		"--to", "md",
		"--to", "json",
		"--output", outDir,
		"--pdf-backend", string(backend),
	}
	if p.DoOCR {
		args = append(args, "--ocr")
	} else {
		args = append(args, "--no-ocr")
	}
	if p.DoTableStructure {
		args = append(args, "--tables")
	} else {
		args = append(args, "--no-tables")
	}
	return args
}

// stderrTail returns the last non-empty stderr line, which for a Python tool is
// normally the exception, formatted as an error suffix.
func stderrTail(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return ": " + ocr.Truncate(l, 2<<10)
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
