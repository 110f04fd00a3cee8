package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/extract"
	"github.com/joseph-ayodele/docparse/internal/parser"
)

// docparse <file_path> [no-ocr]
//
// Prints one JSON result on stdout. Exits 1 only when file_path is missing.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	if err := common.EnsureUTF8Console(); err != nil {
		slog.Warn("could not switch console to utf-8", "error", err)
	}

	req, err := parser.ParseArgs(args)
	if err != nil {
		writeResult(stdout, parser.Failure(parser.MissingPathMessage, ""))
		return 1
	}

	// a missing file is answered before any configuration or engine setup
	if _, err := parser.StatInput(req.FilePath); err != nil {
		slog.Debug("input not found", "path", req.FilePath, "error", err)
		writeResult(stdout, parser.NotFound(req.FilePath))
		return 0
	}

	cfg, cfgErr := common.LoadConfig()
	if cfgErr != nil {
		cfg = common.DefaultConfig()
	}
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, logger = common.NewRun(ctx, logger)
	ctx, cancel := common.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	if cfgErr != nil {
		logger.Error("load config", "error", cfgErr)
		writeResult(stdout, parser.Failure(common.ErrorMessage(cfgErr), common.ErrorType(cfgErr)))
		return 0
	}

	engine, err := extract.NewEngine(cfg, logger)
	if err != nil {
		logger.Error("build engine", "engine", cfg.Engine, "error", err)
		writeResult(stdout, parser.Failure(common.ErrorMessage(err), common.ErrorType(err)))
		return 0
	}

	svc := parser.NewService(engine, extract.PDFBackend(cfg.Docling.PDFBackend), cfg.Defaults, nil)
	writeResult(stdout, svc.ParseDocument(ctx, req))
	return 0
}

func writeResult(w io.Writer, res parser.Result) {
	if err := parser.WriteJSON(w, res); err != nil {
		slog.Error("write result", "error", err)
	}
}
