package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssuedAsset is a fungible asset created by the token factory.
type IssuedAsset struct {
	Address        string           `json:"address"`
	Name           string           `json:"name"`
	Symbol         string           `json:"symbol"`
	Creator        string           `json:"creator"`
	Decimals       uint8            `json:"decimals"`
	MaxSupply      *decimal.Decimal `json:"max_supply"`
	IconURI        string           `json:"icon_uri"`
	ProjectURI     string           `json:"project_uri"`
	MintFeePerUnit decimal.Decimal  `json:"mint_fee_per_unit"`
	CreatedAt      time.Time        `json:"created_at"`
}

// PoolStats holds the derived bonding-curve counters for one asset.
type PoolStats struct {
	FAAddress   string          `json:"fa_address"`
	AptReserves decimal.Decimal `json:"apt_reserves"`
	TotalVolume decimal.Decimal `json:"total_volume"`
	TradeCount  int64           `json:"trade_count"`
	IsGraduated bool            `json:"is_graduated"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewPoolStats returns zeroed statistics for a freshly created asset.
func NewPoolStats(faAddress string, at time.Time) PoolStats {
	return PoolStats{
		FAAddress:   faAddress,
		AptReserves: decimal.Zero,
		TotalVolume: decimal.Zero,
		UpdatedAt:   at,
	}
}

// AssetWithStats joins an asset with its pool stats and trade count.
type AssetWithStats struct {
	IssuedAsset
	PoolStats  *PoolStats `json:"pool_stats"`
	TradeCount int64      `json:"trade_total"`
}

// TrendingAsset is an asset ranked by settlement volume over a window.
type TrendingAsset struct {
	Address       string          `json:"address"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	Creator       string          `json:"creator"`
	Volume24h     decimal.Decimal `json:"volume_24h"`
	TradeCount24h int64           `json:"trade_count_24h"`
	AptReserves   decimal.Decimal `json:"apt_reserves"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	IsGraduated   bool            `json:"is_graduated"`
}
