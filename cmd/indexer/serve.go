package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveScope/internal/metrics"
	"curveScope/internal/storage/postgres"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateAPI(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	srv := newServer(cfg.APIAddr, store, metrics.NewEngine(), logger)
	logger.Info("serve start", zap.String("pg_dsn", redactDSN(cfg.PGDSN)))

	serveErr := make(chan error, 1)
	go func() { serveErr <- listen(srv, logger) }()

	select {
	case <-ctx.Done():
		shutdown(srv, logger)
		return nil
	case err := <-serveErr:
		return err
	}
}
