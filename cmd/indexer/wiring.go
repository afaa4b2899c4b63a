package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"curveScope/internal/aggregate"
	"curveScope/internal/chain"
	"curveScope/internal/config"
	"curveScope/internal/indexer"
	"curveScope/internal/metrics"
	"curveScope/internal/notify"
	"curveScope/internal/storage"
	"curveScope/internal/storage/memory"
	"curveScope/internal/storage/postgres"
)

// stack is everything an ingesting command drives.
type stack struct {
	store   storage.Store
	metrics *metrics.Engine
	runner  *indexer.Runner
	closers []func()
}

func (s *stack) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildStack(ctx context.Context, cfg config.Config, runCfg indexer.RunConfig, logger *zap.Logger) (*stack, error) {
	s := &stack{metrics: metrics.NewEngine()}

	client, err := chain.NewClient(cfg.NodeURL, chain.Options{})
	if err != nil {
		return nil, fmt.Errorf("node client: %w", err)
	}

	if err := openStore(ctx, s, cfg, logger); err != nil {
		s.close()
		return nil, err
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.RedisAddr != "" {
		rn, err := notify.NewRedisNotifier(ctx, notify.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		}, logger)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, func() { rn.Close() })
		notifier = rn
	}

	pipeline, err := indexer.NewPipeline(cfg.Contract)
	if err != nil {
		s.close()
		return nil, err
	}

	updater := aggregate.NewUpdater(aggregate.Config{
		GraduationThreshold: cfg.GraduationThreshold,
		FeeBps:              cfg.FeeBps,
	}, s.store, notifier, s.metrics, logger)

	deps := indexer.Deps{
		Source:   client,
		History:  s.store,
		Pipeline: pipeline,
		Applier:  updater,
		Metrics:  s.metrics,
	}
	if cfg.DecodeErrors != "" {
		deps.Errors = storage.NewJsonlStorage(cfg.DecodeErrors)
	}

	runner, err := indexer.NewRunner(runCfg, deps, logger)
	if err != nil {
		s.close()
		return nil, err
	}
	s.runner = runner

	logger.Info("indexer configured",
		zap.String("node_url", cfg.NodeURL),
		zap.String("contract", pipeline.Contract()),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Bool("notifications", cfg.RedisAddr != ""),
		zap.Int("batch_size", runCfg.BatchSize),
		zap.String("graduation_threshold", cfg.GraduationThreshold.String()),
		zap.Int64("fee_bps", cfg.FeeBps),
	)
	return s, nil
}

func openStore(ctx context.Context, s *stack, cfg config.Config, logger *zap.Logger) error {
	if cfg.DryRun {
		logger.Warn("dry run: derived state is kept in memory and lost on exit")
		s.store = memory.New()
		return nil
	}
	pg, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	s.closers = append(s.closers, pg.Close)
	if cfg.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	s.store = pg
	return nil
}

func runConfig(cfg config.Config) (indexer.RunConfig, error) {
	from, err := indexer.ParseVersion(cfg.From)
	if err != nil {
		return indexer.RunConfig{}, fmt.Errorf("from: %w", err)
	}
	return indexer.RunConfig{
		FromVersion:  from,
		BatchSize:    cfg.BatchSize,
		HeadLag:      cfg.HeadLag,
		PollInterval: cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, nil
}
