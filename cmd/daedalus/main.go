package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wehubfusion/Daedalus/cmd/daedalus/commands"
	"github.com/wehubfusion/Daedalus/internal/tracing"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if endpoint := os.Getenv("DAEDALUS_OTLP_ENDPOINT"); endpoint != "" {
		config := tracing.DefaultConfig("daedalus")
		config.OTLPEndpoint = endpoint
		shutdown, err := tracing.SetupTracing(ctx, config, logger)
		if err != nil {
			logger.Error("tracing setup failed", zap.Error(err))
			os.Exit(1)
		}
		defer func() { _ = tracing.ShutdownTracing(shutdown, logger) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	if err := commands.Execute(ctx, logger); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
