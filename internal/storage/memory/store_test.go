package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"curveScope/internal/model"
	"curveScope/internal/storage"
)

func seedAsset(t *testing.T, store *Store, address string, at time.Time) {
	t.Helper()
	created, err := store.CreateAsset(context.Background(), model.IssuedAsset{Address: address, Name: address, Symbol: "SYM", CreatedAt: at}, model.NewPoolStats(address, at))
	if err != nil || !created {
		t.Fatalf("create asset %s: created=%v err=%v", address, created, err)
	}
}

func TestCreateAssetIsIdempotent(t *testing.T) {
	store := New()
	now := time.Unix(1700000000, 0).UTC()
	seedAsset(t, store, "0xaa", now)

	created, err := store.CreateAsset(context.Background(), model.IssuedAsset{Address: "0xaa", Name: "Other"}, model.NewPoolStats("0xaa", now))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate asset to be ignored")
	}
	asset, err := store.GetAsset(context.Background(), "0xaa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if asset.Name != "0xaa" {
		t.Fatalf("expected first write to win, got %q", asset.Name)
	}
}

func TestCreateTradeDeduplicatesByHash(t *testing.T) {
	store := New()
	trade := model.Trade{TransactionHash: "0x1", FAAddress: "0xaa", AptAmount: decimal.NewFromInt(5)}
	for i := 0; i < 2; i++ {
		if _, err := store.CreateTrade(context.Background(), trade); err != nil {
			t.Fatalf("create trade: %v", err)
		}
	}
	_, total, err := store.RecentTrades(context.Background(), storage.TradeFilter{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 trade, got %d", total)
	}
}

func TestRecordPurchaseCreditsOnce(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	seedAsset(t, store, "0xaa", now)

	trade := model.Trade{TransactionHash: "0xbuy", FAAddress: "0xaa", AptAmount: decimal.NewFromInt(100), CreatedAt: now}
	created, stats, err := store.RecordPurchase(ctx, trade, decimal.NewFromInt(99))
	if err != nil || !created || stats == nil {
		t.Fatalf("first record: %v %v %v", created, stats, err)
	}
	if !stats.AptReserves.Equal(decimal.NewFromInt(99)) || stats.TradeCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	created, stats, err = store.RecordPurchase(ctx, trade, decimal.NewFromInt(99))
	if err != nil || created || stats != nil {
		t.Fatalf("replay should be a no-op: %v %v %v", created, stats, err)
	}
	current, _ := store.GetPoolStats(ctx, "0xaa")
	if !current.AptReserves.Equal(decimal.NewFromInt(99)) || current.TradeCount != 1 {
		t.Fatalf("replay credited again: %+v", current)
	}

	created, stats, err = store.RecordPurchase(ctx, model.Trade{TransactionHash: "0xother", FAAddress: "0xbb"}, decimal.NewFromInt(5))
	if err != nil || !created || stats != nil {
		t.Fatalf("unknown pool: %v %v %v", created, stats, err)
	}
	if _, total, _ := store.RecentTrades(ctx, storage.TradeFilter{}); total != 2 {
		t.Fatalf("expected trade kept for unknown pool, total=%d", total)
	}
}

func TestMarkGraduatedIsOneWay(t *testing.T) {
	store := New()
	now := time.Unix(1700000000, 0).UTC()
	seedAsset(t, store, "0xaa", now)

	first, err := store.MarkGraduated(context.Background(), "0xaa", now)
	if err != nil || !first {
		t.Fatalf("first mark: %v %v", first, err)
	}
	second, err := store.MarkGraduated(context.Background(), "0xaa", now)
	if err != nil || second {
		t.Fatalf("second mark should be a no-op: %v %v", second, err)
	}
	_, stats, err := store.RecordPurchase(context.Background(), model.Trade{TransactionHash: "0xbuy", FAAddress: "0xaa", CreatedAt: now}, decimal.NewFromInt(1))
	if err != nil || stats == nil {
		t.Fatalf("record purchase: %v %v", stats, err)
	}
	if !stats.IsGraduated {
		t.Fatalf("graduation flag reverted")
	}
	if _, err := store.MarkGraduated(context.Background(), "0xbb", now); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestTradePrefersHighestVersion(t *testing.T) {
	store := New()
	if _, err := store.LatestTrade(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	base := time.Unix(1700000000, 0).UTC()
	store.CreateTrade(context.Background(), model.Trade{TransactionHash: "0x1", Version: 300, CreatedAt: base})
	store.CreateTrade(context.Background(), model.Trade{TransactionHash: "0x2", Version: 100, CreatedAt: base.Add(time.Hour)})

	latest, err := store.LatestTrade(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != 300 {
		t.Fatalf("expected version 300, got %d", latest.Version)
	}
}

func TestTrendingAndWindowVolume(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	seedAsset(t, store, "0xaa", now.Add(-48*time.Hour))
	seedAsset(t, store, "0xbb", now.Add(-48*time.Hour))
	seedAsset(t, store, "0xcc", now.Add(-48*time.Hour))

	store.CreateTrade(ctx, model.Trade{TransactionHash: "0x1", FAAddress: "0xaa", AptAmount: decimal.NewFromInt(100), CreatedAt: now})
	store.CreateTrade(ctx, model.Trade{TransactionHash: "0x2", FAAddress: "0xaa", AptAmount: decimal.NewFromInt(-30), CreatedAt: now})
	store.CreateTrade(ctx, model.Trade{TransactionHash: "0x3", FAAddress: "0xbb", AptAmount: decimal.NewFromInt(500), CreatedAt: now.Add(-30 * time.Hour)})
	store.CreateTrade(ctx, model.Trade{TransactionHash: "0x4", FAAddress: "0xbb", AptAmount: decimal.NewFromInt(80), CreatedAt: now})

	since := now.Add(-24 * time.Hour)
	trending, err := store.TrendingAssets(ctx, since, 2)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	if len(trending) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(trending))
	}
	if trending[0].Address != "0xbb" || !trending[0].Volume24h.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected leader: %+v", trending[0])
	}
	if trending[1].Address != "0xaa" || trending[1].TradeCount24h != 2 || !trending[1].Volume24h.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected runner-up: %+v", trending[1])
	}

	window, err := store.WindowVolume(ctx, "0xbb", since)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if window.TradeCount != 1 || !window.Volume.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected window: %+v", window)
	}
}

func TestRecentTradesPaginatesNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	seedAsset(t, store, "0xaa", base)
	for i := 0; i < 5; i++ {
		store.CreateTrade(ctx, model.Trade{
			TransactionHash: string(rune('a' + i)),
			Version:         uint64(i),
			FAAddress:       "0xaa",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		})
	}
	trades, total, err := store.RecentTrades(ctx, storage.TradeFilter{FAAddress: "0xaa", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if total != 5 || len(trades) != 2 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(trades))
	}
	if trades[0].Version != 3 || trades[1].Version != 2 {
		t.Fatalf("unexpected order: %d, %d", trades[0].Version, trades[1].Version)
	}
	if trades[0].Symbol != "SYM" {
		t.Fatalf("expected joined symbol, got %q", trades[0].Symbol)
	}
}
