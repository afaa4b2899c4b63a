package launchpad

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Kind names a decoded domain event.
type Kind string

const (
	KindAssetCreated    Kind = "asset_created"
	KindAssetMinted     Kind = "asset_minted"
	KindAssetBurned     Kind = "asset_burned"
	KindTokensPurchased Kind = "tokens_purchased"
	KindTokensSold      Kind = "tokens_sold"
	KindPoolGraduated   Kind = "pool_graduated"
	KindPurchaseCall    Kind = "purchase_call"
	KindDexTelemetry    Kind = "dex_telemetry"
	KindUnrecognized    Kind = "unrecognized"
)

// DomainEvent is the closed set of events the decoder produces.
type DomainEvent interface {
	Kind() Kind
	domainEvent()
}

// AssetCreated is emitted by the token factory when a new asset object exists.
type AssetCreated struct {
	Address        string
	Name           string
	Symbol         string
	Creator        string
	Decimals       uint8
	MaxSupply      *decimal.Decimal
	IconURI        string
	ProjectURI     string
	MintFeePerUnit decimal.Decimal
}

type AssetMinted struct {
	FAAddress    string
	Recipient    string
	Amount       decimal.Decimal
	TotalMintFee decimal.Decimal
}

type AssetBurned struct {
	FAAddress string
	Burner    string
	Amount    decimal.Decimal
}

// TokensPurchased is an explicit purchase event from the bonding curve.
type TokensPurchased struct {
	FAAddress   string
	Buyer       string
	AptAmount   decimal.Decimal
	TokenAmount decimal.Decimal
	FeeAmount   decimal.Decimal
}

type TokensSold struct {
	FAAddress   string
	Seller      string
	AptAmount   decimal.Decimal
	TokenAmount decimal.Decimal
	FeeAmount   decimal.Decimal
}

// PoolGraduated is authoritative: it graduates the pool regardless of counters.
type PoolGraduated struct {
	FAAddress   string
	AptReserves *decimal.Decimal
}

// PurchaseCall is a buy reconstructed from entry function arguments.
// TokenAmount is inferred from transfer-shaped events and may be zero.
type PurchaseCall struct {
	FAAddress   string
	Buyer       string
	GrossAmount decimal.Decimal
	TokenAmount decimal.Decimal
}

// DexTelemetry covers post-graduation DEX events that are only reported.
type DexTelemetry struct {
	Name string
	Type string
	Data json.RawMessage
}

// Unrecognized is a contract-scoped event with no known fragment.
type Unrecognized struct {
	Type string
}

func (AssetCreated) Kind() Kind    { return KindAssetCreated }
func (AssetMinted) Kind() Kind     { return KindAssetMinted }
func (AssetBurned) Kind() Kind     { return KindAssetBurned }
func (TokensPurchased) Kind() Kind { return KindTokensPurchased }
func (TokensSold) Kind() Kind      { return KindTokensSold }
func (PoolGraduated) Kind() Kind   { return KindPoolGraduated }
func (PurchaseCall) Kind() Kind    { return KindPurchaseCall }
func (DexTelemetry) Kind() Kind    { return KindDexTelemetry }
func (Unrecognized) Kind() Kind    { return KindUnrecognized }

func (AssetCreated) domainEvent()    {}
func (AssetMinted) domainEvent()     {}
func (AssetBurned) domainEvent()     {}
func (TokensPurchased) domainEvent() {}
func (TokensSold) domainEvent()      {}
func (PoolGraduated) domainEvent()   {}
func (PurchaseCall) domainEvent()    {}
func (DexTelemetry) domainEvent()    {}
func (Unrecognized) domainEvent()    {}
