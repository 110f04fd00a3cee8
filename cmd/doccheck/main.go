package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/extract"
	"github.com/joseph-ayodele/docparse/internal/installcheck"
)

// doccheck verifies the configured conversion engine is installed. Exits 0 when every
// check passed, 1 otherwise.
func main() {
	os.Exit(run(os.Stdout))
}

func run(stdout io.Writer) int {
	if err := common.EnsureUTF8Console(); err != nil {
		slog.Warn("could not switch console to utf-8", "error", err)
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

	// a broken configuration or engine fails both checks instead of aborting the report
	var engine extract.Engine
	if cfgErr != nil {
		logger.Error("load config", "error", cfgErr)
	} else if e, err := extract.NewEngine(cfg, logger); err != nil {
		logger.Error("build engine", "engine", cfg.Engine, "error", err)
	} else {
		engine = e
	}

	report := installcheck.Run(ctx, stdout, logger, installcheck.DefaultChecks(engine, logger))
	logger.Info("installation check finished", "engine", cfg.Engine, "passed", report.Passed())
	return report.ExitCode()
}
