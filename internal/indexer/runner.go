package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"curveScope/internal/metrics"
	"curveScope/internal/model"
	"curveScope/internal/storage"
)

const (
	DefaultBatchSize    = 200
	DefaultHeadLag      = 50
	DefaultPollInterval = 3 * time.Second
)

// State is the lifecycle of the polling loop.
type State int32

const (
	StateStopped State = iota
	StateBootstrapping
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateBootstrapping:
		return "bootstrapping"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromVersion  *uint64
	BatchSize    int
	HeadLag      uint64
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Deps are the collaborators a Runner drives.
type Deps struct {
	Source   Source
	History  TradeHistory
	Pipeline *Pipeline
	Applier  Applier
	Errors   storage.DecodeErrorSink
	Metrics  *metrics.Engine
}

// CycleResult summarizes one polling cycle.
type CycleResult struct {
	Start    uint64
	Fetched  int
	Relevant int
	Cursor   uint64
}

// Runner polls the ledger, decodes launchpad activity and applies it.
// Only one cycle runs at a time.
type Runner struct {
	cfg    RunConfig
	deps   Deps
	logger *zap.Logger

	cursor   Cursor
	state    atomic.Int32
	stopping atomic.Bool
	cycleMu  sync.Mutex

	mu        sync.Mutex
	scheduler *Scheduler
	cancel    context.CancelFunc
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, deps Deps, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is nil")
	}
	if deps.Applier == nil {
		return nil, fmt.Errorf("applier is nil")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Runner{cfg: cfg, deps: deps, logger: logger}, nil
}

func (r *Runner) State() State {
	return State(r.state.Load())
}

// Cursor returns the last processed version and whether it is set.
func (r *Runner) Cursor() (uint64, bool) {
	return r.cursor.Position()
}

// Bootstrap resolves the starting cursor: the explicit version, else the
// newest persisted trade, else a short distance behind the ledger head.
func (r *Runner) Bootstrap(ctx context.Context) (uint64, error) {
	if r.cfg.FromVersion != nil {
		r.cursor.Init(*r.cfg.FromVersion)
		r.logger.Info("cursor from explicit version", zap.Uint64("version", *r.cfg.FromVersion))
		return r.bootstrapped()
	}

	if version, ok := r.versionFromHistory(ctx); ok {
		r.cursor.Init(version)
		r.logger.Info("cursor from trade history", zap.Uint64("version", version))
		return r.bootstrapped()
	}

	var head uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = r.deps.Source.LedgerVersion(ctx)
		if err != nil {
			r.logger.Warn("ledger version fetch failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get ledger version: %w", err)
	}
	start := uint64(0)
	if head > r.cfg.HeadLag {
		start = head - r.cfg.HeadLag
	}
	r.cursor.Init(start)
	r.logger.Info("no trade history, cursor near head",
		zap.Uint64("head", head),
		zap.Uint64("version", start))
	return r.bootstrapped()
}

func (r *Runner) bootstrapped() (uint64, error) {
	version, _ := r.cursor.Position()
	r.deps.Metrics.SetCursor(version)
	return version, nil
}

func (r *Runner) versionFromHistory(ctx context.Context) (uint64, bool) {
	if r.deps.History == nil {
		return 0, false
	}
	trade, err := r.deps.History.LatestTrade(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false
	}
	if err != nil {
		r.logger.Warn("latest trade lookup failed", zap.Error(err))
		return 0, false
	}
	if trade.Version > 0 {
		return trade.Version, true
	}
	tx, err := r.deps.Source.TransactionByHash(ctx, trade.TransactionHash)
	if err != nil {
		r.logger.Warn("resolve latest trade version failed", zap.String("tx", trade.TransactionHash), zap.Error(err))
		return 0, false
	}
	return tx.Version, true
}

// Start bootstraps the cursor, runs one cycle and schedules the rest.
// A failed bootstrap is retried by the next cycle.
// Calling Start on a runner that is not stopped is a no-op.
func (r *Runner) Start(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(StateStopped), int32(StateBootstrapping)) {
		r.logger.Warn("runner already started", zap.Stringer("state", r.State()))
		return nil
	}
	if _, ok := r.cursor.Position(); !ok {
		if _, err := r.Bootstrap(ctx); err != nil {
			r.logger.Warn("bootstrap failed, retrying next cycle", zap.Error(err))
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	scheduler, err := NewScheduler(r.cfg.PollInterval, func() { r.tick(runCtx) }, r.logger)
	if err != nil {
		cancel()
		r.state.Store(int32(StateStopped))
		return err
	}

	r.stopping.Store(false)
	r.mu.Lock()
	r.scheduler = scheduler
	r.cancel = cancel
	r.mu.Unlock()
	r.state.Store(int32(StateRunning))

	r.tick(runCtx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scheduler != scheduler {
		// stopped during the first cycle
		return nil
	}
	scheduler.Start()
	r.logger.Info("runner started", zap.Duration("interval", r.cfg.PollInterval), zap.Int("batch_size", r.cfg.BatchSize))
	return nil
}

// Stop cancels future cycles and waits for the current one to reach a
// transaction boundary.
func (r *Runner) Stop() {
	if !r.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return
	}
	r.stopping.Store(true)

	r.mu.Lock()
	scheduler, cancel := r.scheduler, r.cancel
	r.scheduler, r.cancel = nil, nil
	r.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
	if cancel != nil {
		cancel()
	}
	version, _ := r.cursor.Position()
	r.logger.Info("runner stopped", zap.Uint64("cursor", version))
}

func (r *Runner) tick(ctx context.Context) {
	result, err := r.Cycle(ctx)
	if err != nil {
		r.logger.Warn("cycle failed", zap.Uint64("start", result.Start), zap.Error(err))
		return
	}
	if result.Fetched > 0 {
		r.logger.Info("cycle complete",
			zap.Int("transactions", result.Fetched),
			zap.Int("relevant", result.Relevant),
			zap.Uint64("cursor", result.Cursor))
	}
}

// Cycle fetches one batch after the cursor and processes it in order,
// advancing the cursor after every transaction. A fetch error leaves the
// cursor untouched. An unset cursor is bootstrapped first.
func (r *Runner) Cycle(ctx context.Context) (CycleResult, error) {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()

	started := time.Now()
	defer func() { r.deps.Metrics.ObserveCycle(time.Since(started)) }()

	if _, ok := r.cursor.Position(); !ok {
		if _, err := r.Bootstrap(ctx); err != nil {
			return CycleResult{}, fmt.Errorf("bootstrap: %w", err)
		}
	}
	result := CycleResult{Start: r.cursor.Next()}
	result.Cursor, _ = r.cursor.Position()

	txs, err := r.deps.Source.Transactions(ctx, result.Start, r.cfg.BatchSize)
	if err != nil {
		return result, fmt.Errorf("fetch transactions from %d: %w", result.Start, err)
	}

	for _, tx := range txs {
		if ctx.Err() != nil || r.stopping.Load() {
			break
		}
		if r.process(ctx, tx) {
			result.Relevant++
		}
		result.Fetched++
		if r.cursor.Advance(tx.Version) {
			r.deps.Metrics.SetCursor(tx.Version)
		}
	}
	result.Cursor, _ = r.cursor.Position()
	return result, nil
}

// process runs classify, decode and apply for one transaction. Decode and
// store failures are logged per event and never stop the transaction.
func (r *Runner) process(ctx context.Context, tx model.Transaction) bool {
	decoded := r.deps.Pipeline.Decode(tx)
	r.deps.Metrics.RecordTransaction(decoded.Relevant)
	if !decoded.Relevant {
		return false
	}

	r.logger.Debug("relevant transaction",
		zap.String("tx", tx.Hash),
		zap.Uint64("version", tx.Version),
		zap.String("function", tx.FunctionName()),
		zap.Int("events", len(decoded.Events)))

	for _, failure := range decoded.Failures {
		r.deps.Metrics.RecordDecodeError()
		r.logger.Warn("decode failed",
			zap.String("tx", failure.TxHash),
			zap.Int("event_index", failure.EventIndex),
			zap.String("type", failure.EventType),
			zap.String("error", failure.Error))
		if r.deps.Errors != nil {
			if err := r.deps.Errors.PutDecodeError(failure); err != nil {
				r.logger.Warn("write decode error failed", zap.Error(err))
			}
		}
	}

	for _, event := range decoded.Events {
		if err := r.deps.Applier.Apply(ctx, tx, event); err != nil {
			r.deps.Metrics.RecordStoreError()
			r.logger.Error("apply event failed",
				zap.String("tx", tx.Hash),
				zap.String("kind", string(event.Kind())),
				zap.Error(err))
		}
	}
	return true
}

// RunSummary reports a bounded run.
type RunSummary struct {
	Cycles       int
	Transactions int
	Relevant     int
	Cursor       uint64
}

// RunFor polls back to back until duration minus margin has elapsed.
// It sleeps for the poll interval only when a cycle fails or comes back short.
func (r *Runner) RunFor(ctx context.Context, duration, margin time.Duration) (RunSummary, error) {
	var summary RunSummary
	if duration <= margin {
		return summary, fmt.Errorf("duration %s must exceed safety margin %s", duration, margin)
	}
	deadline := time.Now().Add(duration - margin)
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for runCtx.Err() == nil {
		result, err := r.Cycle(runCtx)
		summary.Cycles++
		summary.Transactions += result.Fetched
		summary.Relevant += result.Relevant
		if err != nil && runCtx.Err() == nil {
			r.logger.Warn("cycle failed", zap.Uint64("start", result.Start), zap.Error(err))
		}
		if err == nil && result.Fetched >= r.cfg.BatchSize {
			continue
		}
		timer := time.NewTimer(r.cfg.PollInterval)
		select {
		case <-runCtx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	summary.Cursor, _ = r.cursor.Position()
	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	r.logger.Info("bounded run finished",
		zap.Int("cycles", summary.Cycles),
		zap.Int("transactions", summary.Transactions),
		zap.Int("relevant", summary.Relevant),
		zap.Uint64("cursor", summary.Cursor))
	return summary, nil
}
