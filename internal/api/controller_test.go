package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curveScope/internal/metrics"
	"curveScope/internal/model"
	"curveScope/internal/storage/memory"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func seededController(t *testing.T) (*Controller, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	for i, addr := range []string{"0xaa", "0xbb"} {
		created := testNow.Add(-time.Duration(48-i) * time.Hour)
		_, err := store.CreateAsset(ctx, model.IssuedAsset{Address: addr, Name: "Token " + addr, Symbol: "T" + addr[2:], CreatedAt: created}, model.NewPoolStats(addr, created))
		require.NoError(t, err)
	}
	trades := []model.Trade{
		{TransactionHash: "0x1", Version: 1, FAAddress: "0xaa", TradeType: model.TradeBuy, AptAmount: decimal.NewFromInt(100), CreatedAt: testNow.Add(-time.Hour)},
		{TransactionHash: "0x2", Version: 2, FAAddress: "0xaa", TradeType: model.TradeSell, AptAmount: decimal.NewFromInt(-40), CreatedAt: testNow.Add(-30 * time.Minute)},
		{TransactionHash: "0x3", Version: 3, FAAddress: "0xbb", TradeType: model.TradeBuy, AptAmount: decimal.NewFromInt(500), CreatedAt: testNow.Add(-25 * time.Hour)},
		{TransactionHash: "0x4", Version: 4, FAAddress: "0xbb", TradeType: model.TradeBuy, AptAmount: decimal.NewFromInt(20), CreatedAt: testNow.Add(-10 * time.Minute)},
	}
	for _, trade := range trades {
		_, err := store.CreateTrade(ctx, trade)
		require.NoError(t, err)
	}

	c := NewController(store, metrics.NewEngine(), nil)
	c.now = func() time.Time { return testNow }
	return c, store
}

func get(t *testing.T, c *Controller, target string) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	c.NewRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/health")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	assert.JSONEq(t, `{"status":"OK","timestamp":"2025-06-01T12:00:00Z"}`, string(body.Data))
}

func TestListTokens(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/api/tokens?limit=1")
	require.Equal(t, http.StatusOK, code)

	var page tokenPage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	require.Len(t, page.Tokens, 1)
	assert.Equal(t, "0xbb", page.Tokens[0].Address, "newest asset first")
	assert.Equal(t, int64(2), page.Tokens[0].TradeCount)
	require.NotNil(t, page.Tokens[0].PoolStats)
	assert.Equal(t, pagination{Total: 2, Limit: 1, Offset: 0, HasMore: true}, page.Pagination)
}

func TestTrendingTokens(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/api/tokens/trending")
	require.Equal(t, http.StatusOK, code)

	var trending []model.TrendingAsset
	require.NoError(t, json.Unmarshal(body.Data, &trending))
	require.Len(t, trending, 2)
	assert.Equal(t, "0xaa", trending[0].Address)
	assert.True(t, trending[0].Volume24h.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int64(2), trending[0].TradeCount24h)
	assert.True(t, trending[1].Volume24h.Equal(decimal.NewFromInt(20)))
}

func TestTokenDetail(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/api/tokens/0xbb")
	require.Equal(t, http.StatusOK, code)

	var detail tokenDetail
	require.NoError(t, json.Unmarshal(body.Data, &detail))
	assert.Equal(t, "0xbb", detail.Address)
	assert.Len(t, detail.Trades, 2)
	assert.Equal(t, "0x4", detail.Trades[0].TransactionHash)
	assert.True(t, detail.Volume24h.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, int64(1), detail.TradeCount24h)
	require.NotNil(t, detail.PoolStats)
}

func TestTokenDetailNotFound(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/api/tokens/0xcc")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Token not found", body.Error)
}

func TestRecentTradesPagination(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/api/trades/recent?limit=2&offset=1")
	require.Equal(t, http.StatusOK, code)

	var page tradePage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	require.Len(t, page.Trades, 2)
	assert.Equal(t, "0x2", page.Trades[0].TransactionHash)
	assert.Equal(t, "Token 0xaa", page.Trades[0].Name)
	assert.Equal(t, pagination{Total: 4, Limit: 2, Offset: 1, HasMore: true}, page.Pagination)
}

func TestTradesForToken(t *testing.T) {
	c, _ := seededController(t)
	code, body := get(t, c, "/api/trades/0xaa?limit=500")
	require.Equal(t, http.StatusOK, code)

	var page tradePage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Len(t, page.Trades, 2)
	assert.Equal(t, maxLimit, page.Pagination.Limit)
	assert.False(t, page.Pagination.HasMore)
}

func TestInvalidPaging(t *testing.T) {
	c, _ := seededController(t)
	for _, target := range []string{
		"/api/trades/recent?limit=abc",
		"/api/trades/recent?limit=0",
		"/api/trades/recent?offset=-1",
		"/api/tokens?offset=x",
		"/api/tokens/trending?limit=-5",
	} {
		code, body := get(t, c, target)
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.False(t, body.Success, target)
	}
}

func TestMetricsRoute(t *testing.T) {
	c, _ := seededController(t)
	rec := httptest.NewRecorder()
	c.NewRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "curvescope_cursor_version")
}
