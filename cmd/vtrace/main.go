package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/vtrace/internal/batch"
	"github.com/udisondev/vtrace/internal/config"
)

const ConfigPath = "config/vtrace.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("VTRACE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	slog.Info("vtrace starting",
		"scenes_dir", cfg.ScenesDir,
		"output_dir", cfg.OutputDir,
		"workers", cfg.Workers,
		"include_writes", cfg.IncludeWrites)

	summary, err := batch.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}

	for _, r := range summary.Results {
		if r.Err != nil {
			slog.Error("scene failed", "scene", r.Number, "path", r.Path, "error", r.Err)
			continue
		}
		slog.Info("scene ok", "scene", r.Number, "path", r.Path, "truncated", r.Truncated)
	}

	slog.Info("batch complete", "run_id", summary.RunID, "scenes", len(summary.Results), "failed", summary.Failed())
	if summary.Failed() {
		return fmt.Errorf("batch run %s completed with scene failures", summary.RunID)
	}
	return nil
}
