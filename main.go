package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	_ "github.com/joho/godotenv/autoload"

	"github.com/teenytinyai/teenytiny-conformance/common/config"
	"github.com/teenytinyai/teenytiny-conformance/common/helper"
	"github.com/teenytinyai/teenytiny-conformance/common/logger"
	"github.com/teenytinyai/teenytiny-conformance/common/random"
	"github.com/teenytinyai/teenytiny-conformance/conformance"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Logger.Error("conformance run failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Logger.Info("all conformance suites passed")
}

func run(ctx context.Context) error {
	target := conformance.Target{
		BaseURL: config.BaseURL,
		APIKey:  config.APIKey,
		Timeout: config.RequestTimeout,
	}
	suites := conformance.Suites()

	runID := random.GetUUID()
	logger.Logger.Info("starting conformance run",
		zap.String("run_id", runID),
		zap.String("base_url", target.BaseURL),
		zap.Int("suite_count", len(suites)),
	)
	start := time.Now()

	runner := &conformance.Runner{
		Target: target,
		Suites: suites,
		Logger: logger.Logger,
	}
	results := runner.Run(ctx)
	conformance.RenderReport(os.Stdout, results)

	summary := conformance.Summarize(results)
	logger.Logger.Info("conformance run finished",
		zap.String("run_id", runID),
		zap.Int64("elapsed_ms", helper.CalcElapsedTime(start)),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Int("not_run", summary.NotRun),
	)
	if summary.Failed > 0 {
		return errors.Errorf("%d of %d scenarios failed", summary.Failed, summary.Total)
	}
	return nil
}
