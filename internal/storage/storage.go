package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"curveScope/internal/model"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

// Writer is the create/update surface used by the aggregate updater.
// Create methods report created=false when the unique key already exists.
type Writer interface {
	CreateAsset(ctx context.Context, asset model.IssuedAsset, stats model.PoolStats) (bool, error)
	GetAsset(ctx context.Context, address string) (model.IssuedAsset, error)
	CreateTrade(ctx context.Context, trade model.Trade) (bool, error)
	// RecordPurchase inserts trade and, only when it is new, adds credit to the
	// pool's reserves and volume and bumps its trade count, atomically.
	// stats is nil when the asset has no pool row; the trade is kept anyway.
	RecordPurchase(ctx context.Context, trade model.Trade, credit decimal.Decimal) (created bool, stats *model.PoolStats, err error)
	LatestTrade(ctx context.Context) (model.Trade, error)
	GetPoolStats(ctx context.Context, address string) (model.PoolStats, error)
	MarkGraduated(ctx context.Context, address string, at time.Time) (bool, error)
}

// TradeFilter selects a page of trades, optionally for one asset.
type TradeFilter struct {
	FAAddress string
	Limit     int
	Offset    int
}

// Reader is the query surface used by the HTTP API.
type Reader interface {
	ListAssets(ctx context.Context, limit, offset int) ([]model.AssetWithStats, int64, error)
	GetAsset(ctx context.Context, address string) (model.IssuedAsset, error)
	GetPoolStats(ctx context.Context, address string) (model.PoolStats, error)
	TrendingAssets(ctx context.Context, since time.Time, limit int) ([]model.TrendingAsset, error)
	RecentTrades(ctx context.Context, filter TradeFilter) ([]model.TradeWithAsset, int64, error)
	WindowVolume(ctx context.Context, faAddress string, since time.Time) (model.WindowVolume, error)
}

// Store is the full persistence surface.
type Store interface {
	Writer
	Reader
}
