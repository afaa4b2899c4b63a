package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curveScope/internal/api"
	"curveScope/internal/metrics"
	"curveScope/internal/storage"
)

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateIndexer(); err != nil {
		return err
	}

	runCfg, err := runConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := buildStack(ctx, cfg, runCfg, logger)
	if err != nil {
		return err
	}
	defer s.close()

	var srv *http.Server
	serveErr := make(chan error, 1)
	if cfg.APIAddr != "" {
		srv = newServer(cfg.APIAddr, s.store, s.metrics, logger)
		go func() { serveErr <- listen(srv, logger) }()
	}

	if err := s.runner.Start(ctx); err != nil {
		shutdown(srv, logger)
		return err
	}

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	s.runner.Stop()
	shutdown(srv, logger)
	if cursor, ok := s.runner.Cursor(); ok {
		logger.Info("indexer stopped", zap.Uint64("cursor", cursor))
	}
	return err
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateIndexer(); err != nil {
		return err
	}
	if cfg.Duration <= cfg.SafetyMargin {
		return fmt.Errorf("duration %s must exceed safety-margin %s", cfg.Duration, cfg.SafetyMargin)
	}

	runCfg, err := runConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := buildStack(ctx, cfg, runCfg, logger)
	if err != nil {
		return err
	}
	defer s.close()

	summary, err := s.runner.RunFor(ctx, cfg.Duration, cfg.SafetyMargin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cycles=%d transactions=%d relevant=%d cursor=%d\n",
		summary.Cycles, summary.Transactions, summary.Relevant, summary.Cursor)
	return nil
}

func newServer(addr string, store storage.Reader, engine *metrics.Engine, logger *zap.Logger) *http.Server {
	controller := api.NewController(store, engine, logger)
	return &http.Server{
		Addr:              addr,
		Handler:           controller.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func listen(srv *http.Server, logger *zap.Logger) error {
	logger.Info("api listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func shutdown(srv *http.Server, logger *zap.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("api shutdown", zap.Error(err))
	}
}
