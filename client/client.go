// Package client runs the docparse command for a calling process and decodes its
// JSON result.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/ocr"
	"github.com/joseph-ayodele/docparse/internal/parser"
)

// Result and Metadata are the JSON document docparse prints.
type (
	Result   = parser.Result
	Metadata = parser.Metadata
)

// Client runs the docparse binary on behalf of a calling process and decodes the
// JSON result it prints.
type Client struct {
	binary string
	runner ocr.Runner
	logger *slog.Logger
}

func New(binary string, logger *slog.Logger) *Client {
	if binary == "" {
		binary = "docparse"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{binary: binary, runner: ocr.ExecRunner{}, logger: logger}
}

// WithRunner swaps the command runner, mainly for tests.
func (c *Client) WithRunner(r ocr.Runner) *Client {
	c.runner = r
	return c
}

// ParseDocument parses one file. A failed parse is still a Result; an error means the
// process could not be started, exited non-zero, or printed something other than JSON.
func (c *Client) ParseDocument(ctx context.Context, path string, enableOCR bool) (*Result, error) {
	args := []string{path}
	if !enableOCR {
		args = append(args, constants.DisableOCRToken)
	}
	logger := c.logger.With("path", path)
	logger.Info("parsing document", "ocr", enableOCR)

	stdout, stderr, err := c.runner.Run(ctx, c.binary, logger, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(stderr))
			if detail == "" {
				detail = "unknown error"
			}
			logger.Error("docparse exited", "exit_code", exitErr.ExitCode(), "stderr", ocr.Truncate(detail, 8<<10))
			return nil, common.NewAppError(common.CodeConversion, "docparse process failed", errors.New(detail))
		}
		logger.Error("failed to start docparse", "error", err)
		return nil, common.NewAppError(common.CodeEngineUnavailable, "start docparse", err)
	}

	var res Result
	if err := json.Unmarshal(stdout, &res); err != nil {
		logger.Error("failed to decode docparse output", "error", err, "stdout", ocr.Truncate(string(stdout), 2<<10))
		return nil, common.NewAppError(common.CodeInvalidOutput, "decode docparse output", err)
	}

	if res.Success {
		md := Metadata{}
		if res.Metadata != nil {
			md = *res.Metadata
		}
		logger.Info("document parsed", "char_count", md.CharCount, "page_count", md.PageCount)
	} else {
		logger.Error("document parse failed", "error", res.Error, "error_type", res.ErrorType)
	}
	return &res, nil
}

// IsSupportedFormat reports whether path has an extension docparse accepts.
func IsSupportedFormat(path string) bool {
	return constants.IsSupported(path)
}
