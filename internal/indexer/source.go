package indexer

import (
	"context"

	"curveScope/internal/launchpad"
	"curveScope/internal/model"
)

// Source is the ledger the runner reads from.
type Source interface {
	Transactions(ctx context.Context, start uint64, limit int) ([]model.Transaction, error)
	LedgerVersion(ctx context.Context) (uint64, error)
	TransactionByHash(ctx context.Context, hash string) (model.Transaction, error)
}

// Applier persists one decoded event.
type Applier interface {
	Apply(ctx context.Context, tx model.Transaction, event launchpad.DomainEvent) error
}

// TradeHistory exposes the most recent persisted trade for cursor bootstrap.
type TradeHistory interface {
	LatestTrade(ctx context.Context) (model.Trade, error)
}
