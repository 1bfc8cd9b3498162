package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/atelierlabs/mintline/pkg/pipeline"
	"github.com/atelierlabs/mintline/pkg/pipeline/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupResult, err := setup.Setup(ctx)
	if err != nil {
		slog.Error("failed to setup", "error", err)
		return
	}

	config, err := pipeline.NewControllerConfigFromSetupResult(ctx, setupResult)
	if err != nil {
		slog.Error("failed to create controller config", "error", err)
		return
	}

	controller, err := pipeline.NewController(config)
	if err != nil {
		slog.Error("failed to create controller", "error", err)
		return
	}

	if err := controller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("controller stopped", "error", err)
	}
}
