package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"retailops/internal/app/server"
	"retailops/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	app, err := server.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := app.Serve(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
