package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"curveScope/internal/model"
)

// BackfillResult reports a historical replay.
type BackfillResult struct {
	Ranges       int
	Skipped      int
	Transactions int
	Relevant     int
}

// Backfill replays the closed version range [from, to] without touching the
// live cursor. Ranges that still fail after retries are logged and skipped.
func (r *Runner) Backfill(ctx context.Context, from, to uint64) (BackfillResult, error) {
	var result BackfillResult
	ranges, err := SplitRange(from, to, uint64(r.cfg.BatchSize))
	if err != nil {
		return result, err
	}

	for _, versionRange := range ranges {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.Ranges++
		txs, err := r.fetchRangeWithRetry(ctx, versionRange)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Skipped++
			r.logger.Error("skip range",
				zap.Uint64("from", versionRange.From),
				zap.Uint64("to", versionRange.To),
				zap.Error(err))
			continue
		}

		relevant := 0
		for _, tx := range txs {
			if tx.Version < versionRange.From || tx.Version > versionRange.To {
				continue
			}
			result.Transactions++
			if r.process(ctx, tx) {
				relevant++
			}
		}
		result.Relevant += relevant
		if relevant > 0 {
			r.logger.Info("backfill range",
				zap.Uint64("from", versionRange.From),
				zap.Uint64("to", versionRange.To),
				zap.Int("relevant", relevant))
		}
	}

	r.logger.Info("backfill complete",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Int("transactions", result.Transactions),
		zap.Int("relevant", result.Relevant),
		zap.Int("skipped_ranges", result.Skipped))
	return result, nil
}

func (r *Runner) fetchRangeWithRetry(ctx context.Context, versionRange VersionRange) ([]model.Transaction, error) {
	limit := versionRange.To - versionRange.From + 1
	if limit > uint64(r.cfg.BatchSize) {
		return nil, fmt.Errorf("range %d-%d exceeds batch size", versionRange.From, versionRange.To)
	}
	var txs []model.Transaction
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		txs, err = r.deps.Source.Transactions(ctx, versionRange.From, int(limit))
		if err != nil {
			r.logger.Warn("fetch range failed", zap.Error(err), zap.Uint64("from", versionRange.From), zap.Uint64("to", versionRange.To))
		}
		return err
	})
	return txs, err
}
