package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"curveScope/internal/model"
	"curveScope/internal/storage"
)

type tradePage struct {
	Trades     []model.TradeWithAsset `json:"trades"`
	Pagination pagination             `json:"pagination"`
}

// RecentTrades returns trades across all assets, newest first.
func (c *Controller) RecentTrades(w http.ResponseWriter, r *http.Request) {
	c.writeTrades(w, r, "")
}

// TradesForToken returns trades for a single asset, newest first.
func (c *Controller) TradesForToken(w http.ResponseWriter, r *http.Request) {
	c.writeTrades(w, r, mux.Vars(r)["address"])
}

func (c *Controller) writeTrades(w http.ResponseWriter, r *http.Request, address string) {
	paging, err := parsePaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, total, err := c.store.RecentTrades(r.Context(), storage.TradeFilter{
		FAAddress: address,
		Limit:     paging.Limit,
		Offset:    paging.Offset,
	})
	if err != nil {
		what := "recent trades"
		if address != "" {
			what = "trades for token"
		}
		c.queryFailed(w, what, err)
		return
	}
	if trades == nil {
		trades = []model.TradeWithAsset{}
	}
	writeJSON(w, http.StatusOK, tradePage{Trades: trades, Pagination: newPagination(paging, total)})
}
