package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType classifies a settlement row.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
	TradeMint TradeType = "MINT"
	TradeBurn TradeType = "BURN"
)

// Trade is one append-only settlement row, unique by transaction hash.
type Trade struct {
	ID              string          `json:"id"`
	TransactionHash string          `json:"transaction_hash"`
	Version         uint64          `json:"version"`
	FAAddress       string          `json:"fa_address"`
	UserAddress     string          `json:"user_address"`
	TradeType       TradeType       `json:"trade_type"`
	AptAmount       decimal.Decimal `json:"apt_amount"`
	TokenAmount     decimal.Decimal `json:"token_amount"`
	PricePerToken   decimal.Decimal `json:"price_per_token"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TradeWithAsset is a trade joined with the display fields of its asset.
type TradeWithAsset struct {
	Trade
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// WindowVolume is the signed settlement sum and row count over a time window.
type WindowVolume struct {
	Volume     decimal.Decimal `json:"volume"`
	TradeCount int64           `json:"trade_count"`
}
