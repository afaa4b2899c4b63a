// Package memory is an in-process storage.Store used by tests, dry runs and
// the inspect command.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"curveScope/internal/model"
	"curveScope/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	assets map[string]model.IssuedAsset
	stats  map[string]model.PoolStats
	trades []model.Trade
	byHash map[string]int
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		assets: make(map[string]model.IssuedAsset),
		stats:  make(map[string]model.PoolStats),
		byHash: make(map[string]int),
	}
}

func (s *Store) CreateAsset(_ context.Context, asset model.IssuedAsset, stats model.PoolStats) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[asset.Address]; ok {
		return false, nil
	}
	s.assets[asset.Address] = asset
	stats.FAAddress = asset.Address
	s.stats[asset.Address] = stats
	return true, nil
}

func (s *Store) GetAsset(_ context.Context, address string) (model.IssuedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[address]
	if !ok {
		return model.IssuedAsset{}, storage.ErrNotFound
	}
	return asset, nil
}

func (s *Store) CreateTrade(_ context.Context, trade model.Trade) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byHash[trade.TransactionHash]; ok {
		return false, nil
	}
	s.byHash[trade.TransactionHash] = len(s.trades)
	s.trades = append(s.trades, trade)
	return true, nil
}

// LatestTrade returns the trade with the highest ledger version, falling back
// to the most recent timestamp for rows recorded without a version.
func (s *Store) LatestTrade(_ context.Context) (model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.trades) == 0 {
		return model.Trade{}, storage.ErrNotFound
	}
	best := s.trades[0]
	for _, trade := range s.trades[1:] {
		if trade.Version > best.Version || (trade.Version == best.Version && trade.CreatedAt.After(best.CreatedAt)) {
			best = trade
		}
	}
	return best, nil
}

func (s *Store) GetPoolStats(_ context.Context, address string) (model.PoolStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[address]
	if !ok {
		return model.PoolStats{}, storage.ErrNotFound
	}
	return stats, nil
}

func (s *Store) RecordPurchase(_ context.Context, trade model.Trade, credit decimal.Decimal) (bool, *model.PoolStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byHash[trade.TransactionHash]; ok {
		return false, nil, nil
	}
	s.byHash[trade.TransactionHash] = len(s.trades)
	s.trades = append(s.trades, trade)

	stats, ok := s.stats[trade.FAAddress]
	if !ok {
		return true, nil, nil
	}
	stats.AptReserves = stats.AptReserves.Add(credit)
	stats.TotalVolume = stats.TotalVolume.Add(credit)
	stats.TradeCount++
	stats.UpdatedAt = trade.CreatedAt
	s.stats[trade.FAAddress] = stats
	return true, &stats, nil
}

func (s *Store) MarkGraduated(_ context.Context, address string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[address]
	if !ok {
		return false, storage.ErrNotFound
	}
	if stats.IsGraduated {
		return false, nil
	}
	stats.IsGraduated = true
	stats.UpdatedAt = at
	s.stats[address] = stats
	return true, nil
}

func (s *Store) ListAssets(_ context.Context, limit, offset int) ([]model.AssetWithStats, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := make([]model.IssuedAsset, 0, len(s.assets))
	for _, asset := range s.assets {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].Address < assets[j].Address
		}
		return assets[i].CreatedAt.After(assets[j].CreatedAt)
	})

	counts := make(map[string]int64)
	for _, trade := range s.trades {
		counts[trade.FAAddress]++
	}

	total := int64(len(assets))
	assets = page(assets, limit, offset)
	out := make([]model.AssetWithStats, 0, len(assets))
	for _, asset := range assets {
		row := model.AssetWithStats{IssuedAsset: asset, TradeCount: counts[asset.Address]}
		if stats, ok := s.stats[asset.Address]; ok {
			stats := stats
			row.PoolStats = &stats
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (s *Store) TrendingAssets(_ context.Context, since time.Time, limit int) ([]model.TrendingAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TrendingAsset, 0, len(s.assets))
	index := make(map[string]int, len(s.assets))
	for address, asset := range s.assets {
		row := model.TrendingAsset{
			Address:   address,
			Name:      asset.Name,
			Symbol:    asset.Symbol,
			Creator:   asset.Creator,
			Volume24h: decimal.Zero,
		}
		if stats, ok := s.stats[address]; ok {
			row.AptReserves = stats.AptReserves
			row.TotalVolume = stats.TotalVolume
			row.IsGraduated = stats.IsGraduated
		}
		index[address] = len(out)
		out = append(out, row)
	}
	for _, trade := range s.trades {
		i, ok := index[trade.FAAddress]
		if !ok || !trade.CreatedAt.After(since) {
			continue
		}
		out[i].Volume24h = out[i].Volume24h.Add(trade.AptAmount)
		out[i].TradeCount24h++
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Volume24h.Cmp(out[j].Volume24h); cmp != 0 {
			return cmp > 0
		}
		return out[i].Address < out[j].Address
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) RecentTrades(_ context.Context, filter storage.TradeFilter) ([]model.TradeWithAsset, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.Trade, 0, len(s.trades))
	for _, trade := range s.trades {
		if filter.FAAddress != "" && trade.FAAddress != filter.FAAddress {
			continue
		}
		matched = append(matched, trade)
	}
	sort.SliceStable(matched, func(i, j int) bool { return newer(matched[i], matched[j]) })

	total := int64(len(matched))
	matched = page(matched, filter.Limit, filter.Offset)
	out := make([]model.TradeWithAsset, 0, len(matched))
	for _, trade := range matched {
		asset := s.assets[trade.FAAddress]
		out = append(out, model.TradeWithAsset{Trade: trade, Name: asset.Name, Symbol: asset.Symbol})
	}
	return out, total, nil
}

func (s *Store) WindowVolume(_ context.Context, faAddress string, since time.Time) (model.WindowVolume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := model.WindowVolume{Volume: decimal.Zero}
	for _, trade := range s.trades {
		if trade.FAAddress != faAddress || trade.CreatedAt.Before(since) {
			continue
		}
		result.Volume = result.Volume.Add(trade.AptAmount)
		result.TradeCount++
	}
	return result, nil
}

func newer(a, b model.Trade) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Version > b.Version
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
