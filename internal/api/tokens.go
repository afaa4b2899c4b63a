package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"curveScope/internal/model"
	"curveScope/internal/storage"
)

type tokenPage struct {
	Tokens     []model.AssetWithStats `json:"tokens"`
	Pagination pagination             `json:"pagination"`
}

type tokenDetail struct {
	model.IssuedAsset
	PoolStats     *model.PoolStats `json:"pool_stats"`
	Trades        []model.Trade    `json:"trades"`
	Volume24h     decimal.Decimal  `json:"volume_24h"`
	TradeCount24h int64            `json:"trade_count_24h"`
}

// ListTokens returns assets newest first with pool stats and trade counts.
func (c *Controller) ListTokens(w http.ResponseWriter, r *http.Request) {
	paging, err := parsePaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tokens, total, err := c.store.ListAssets(r.Context(), paging.Limit, paging.Offset)
	if err != nil {
		c.queryFailed(w, "list tokens", err)
		return
	}
	if tokens == nil {
		tokens = []model.AssetWithStats{}
	}
	writeJSON(w, http.StatusOK, tokenPage{Tokens: tokens, Pagination: newPagination(paging, total)})
}

// TrendingTokens ranks assets by signed settlement volume over the last 24h.
func (c *Controller) TrendingTokens(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultTrendingTop)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trending, err := c.store.TrendingAssets(r.Context(), c.now().Add(-volumeWindow), limit)
	if err != nil {
		c.queryFailed(w, "trending tokens", err)
		return
	}
	if trending == nil {
		trending = []model.TrendingAsset{}
	}
	writeJSON(w, http.StatusOK, trending)
}

// TokenDetail returns one asset with its pool, latest trades and 24h volume.
func (c *Controller) TokenDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := mux.Vars(r)["address"]

	asset, err := c.store.GetAsset(ctx, address)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Token not found")
		return
	}
	if err != nil {
		c.queryFailed(w, "token detail", err)
		return
	}

	detail := tokenDetail{IssuedAsset: asset, Trades: []model.Trade{}}
	stats, err := c.store.GetPoolStats(ctx, address)
	switch {
	case err == nil:
		detail.PoolStats = &stats
	case !errors.Is(err, storage.ErrNotFound):
		c.queryFailed(w, "token pool stats", err)
		return
	}

	trades, _, err := c.store.RecentTrades(ctx, storage.TradeFilter{FAAddress: address, Limit: detailTradeLimit})
	if err != nil {
		c.queryFailed(w, "token trades", err)
		return
	}
	for _, trade := range trades {
		detail.Trades = append(detail.Trades, trade.Trade)
	}

	window, err := c.store.WindowVolume(ctx, address, c.now().Add(-volumeWindow))
	if err != nil {
		c.queryFailed(w, "token volume", err)
		return
	}
	detail.Volume24h = window.Volume
	detail.TradeCount24h = window.TradeCount
	writeJSON(w, http.StatusOK, detail)
}

func (c *Controller) queryFailed(w http.ResponseWriter, what string, err error) {
	c.logger.Error("query failed", zap.String("query", what), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Failed to fetch "+what)
}
