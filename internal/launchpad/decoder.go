package launchpad

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"curveScope/internal/model"
)

// DecoderConfig configures decoder behavior.
type DecoderConfig struct {
	Contract string
}

type rule struct {
	fragment string
	decode   func(model.Event) (DomainEvent, error)
}

// Decoder maps contract-scoped events to domain events.
type Decoder struct {
	contract string
	rules    []rule
}

// NewDecoder builds a decoder for the contract at cfg.Contract.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	contract, err := ParseAddress(cfg.Contract)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	d := &Decoder{contract: contract}
	d.rules = []rule{
		{fragment: "CreateFAEvent", decode: decodeCreateFA},
		{fragment: "MintFAEvent", decode: decodeMintFA},
		{fragment: "BurnFAEvent", decode: decodeBurnFA},
		{fragment: "BuyTokensEvent", decode: decodeBuyTokens},
		{fragment: "TokensPurchasedEvent", decode: decodeBuyTokens},
		{fragment: "SellTokensEvent", decode: decodeSellTokens},
		{fragment: "TokensSoldEvent", decode: decodeSellTokens},
		{fragment: "PoolGraduatedEvent", decode: decodePoolGraduated},
		{fragment: "PoolCreatedEvent", decode: telemetry("pool_created")},
		{fragment: "LiquidityAddedEvent", decode: telemetry("liquidity_added")},
		{fragment: "LiquidityRemovedEvent", decode: telemetry("liquidity_removed")},
		{fragment: "FeeCollectedEvent", decode: telemetry("fee_collected")},
		{fragment: "SwapEvent", decode: telemetry("swapped")},
	}
	return d, nil
}

// Contract returns the normalized contract address.
func (d *Decoder) Contract() string {
	return d.contract
}

// CanDecode checks if the event type is scoped to the tracked contract.
func (d *Decoder) CanDecode(eventType string) bool {
	if eventType == "" {
		return false
	}
	return strings.Contains(strings.ToLower(eventType), d.contract)
}

// Decode converts one contract event into a domain event.
// Contract events without a known fragment decode to Unrecognized.
func (d *Decoder) Decode(event model.Event) (DomainEvent, error) {
	if !d.CanDecode(event.Type) {
		return nil, fmt.Errorf("event type %q is not scoped to %s", event.Type, d.contract)
	}
	for _, r := range d.rules {
		if strings.Contains(event.Type, r.fragment) {
			return r.decode(event)
		}
	}
	return Unrecognized{Type: event.Type}, nil
}

// DecodePurchaseCall rebuilds a purchase from buy_tokens arguments
// (asset address, gross amount) and infers the token amount from the
// transaction's transfer-shaped events.
func (d *Decoder) DecodePurchaseCall(tx model.Transaction) (PurchaseCall, error) {
	if tx.Payload == nil {
		return PurchaseCall{}, fmt.Errorf("missing payload")
	}
	args := tx.Payload.Arguments
	if len(args) < 2 {
		return PurchaseCall{}, fmt.Errorf("buy_tokens expects 2 arguments, got %d", len(args))
	}

	var faAddr addressRef
	if err := json.Unmarshal(args[0], &faAddr); err != nil {
		return PurchaseCall{}, fmt.Errorf("fa address argument: %w", err)
	}
	if faAddr == "" {
		return PurchaseCall{}, fmt.Errorf("empty fa address argument")
	}
	var gross decimal.Decimal
	if err := json.Unmarshal(args[1], &gross); err != nil {
		return PurchaseCall{}, fmt.Errorf("amount argument: %w", err)
	}

	return PurchaseCall{
		FAAddress:   string(faAddr),
		Buyer:       tx.Sender,
		GrossAmount: gross,
		TokenAmount: InferTokenAmount(tx.Events),
	}, nil
}

// InferTokenAmount returns the first positive amount carried by a
// Transfer or Deposit event, or zero.
func InferTokenAmount(events []model.Event) decimal.Decimal {
	for _, event := range events {
		if !strings.Contains(event.Type, "Transfer") && !strings.Contains(event.Type, "Deposit") {
			continue
		}
		var payload transferPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			continue
		}
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil || !amount.IsPositive() {
			continue
		}
		return amount
	}
	return decimal.Zero
}

func decodeCreateFA(event model.Event) (DomainEvent, error) {
	var p createFAPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		return nil, fmt.Errorf("decode CreateFAEvent: %w", err)
	}
	if p.FAObj == "" {
		return nil, fmt.Errorf("decode CreateFAEvent: missing fa_obj")
	}
	check := fieldCheck{event: "CreateFAEvent"}
	mintFee := check.amount("mint_fee_per_smallest_unit_of_fa", p.MintFee)
	if err := check.err(); err != nil {
		return nil, err
	}
	return AssetCreated{
		Address:        string(p.FAObj),
		Name:           p.Name,
		Symbol:         p.Symbol,
		Creator:        p.CreatorAddr,
		Decimals:       uint8(p.Decimals),
		MaxSupply:      p.MaxSupply.value,
		IconURI:        p.IconURI,
		ProjectURI:     p.ProjectURI,
		MintFeePerUnit: mintFee,
	}, nil
}

func decodeMintFA(event model.Event) (DomainEvent, error) {
	var p mintFAPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		return nil, fmt.Errorf("decode MintFAEvent: %w", err)
	}
	if p.FAObj == "" {
		return nil, fmt.Errorf("decode MintFAEvent: missing fa_obj")
	}
	check := fieldCheck{event: "MintFAEvent"}
	minted := AssetMinted{
		FAAddress:    string(p.FAObj),
		Recipient:    p.RecipientAddr,
		Amount:       check.amount("amount", p.Amount),
		TotalMintFee: check.amount("total_mint_fee", p.TotalMintFee),
	}
	if err := check.err(); err != nil {
		return nil, err
	}
	return minted, nil
}

func decodeBurnFA(event model.Event) (DomainEvent, error) {
	var p burnFAPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		return nil, fmt.Errorf("decode BurnFAEvent: %w", err)
	}
	if p.FAObj == "" {
		return nil, fmt.Errorf("decode BurnFAEvent: missing fa_obj")
	}
	check := fieldCheck{event: "BurnFAEvent"}
	burned := AssetBurned{
		FAAddress: string(p.FAObj),
		Burner:    p.BurnerAddr,
		Amount:    check.amount("amount", p.Amount),
	}
	if err := check.err(); err != nil {
		return nil, err
	}
	return burned, nil
}

func decodeBuyTokens(event model.Event) (DomainEvent, error) {
	var p buyTokensPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		return nil, fmt.Errorf("decode purchase event: %w", err)
	}
	if p.FAObjAddr == "" {
		return nil, fmt.Errorf("decode purchase event: missing fa_obj_addr")
	}
	check := fieldCheck{event: "purchase event"}
	purchased := TokensPurchased{
		FAAddress:   string(p.FAObjAddr),
		Buyer:       p.Buyer,
		AptAmount:   check.amount("apt_amount", p.AptAmount),
		TokenAmount: check.amount("token_amount", p.TokenAmount),
		FeeAmount:   check.amount("fee_amount", p.FeeAmount),
	}
	if err := check.err(); err != nil {
		return nil, err
	}
	return purchased, nil
}

func decodeSellTokens(event model.Event) (DomainEvent, error) {
	var p sellTokensPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		return nil, fmt.Errorf("decode sale event: %w", err)
	}
	if p.FAObjAddr == "" {
		return nil, fmt.Errorf("decode sale event: missing fa_obj_addr")
	}
	check := fieldCheck{event: "sale event"}
	sold := TokensSold{
		FAAddress:   string(p.FAObjAddr),
		Seller:      p.Seller,
		AptAmount:   check.amount("apt_amount", p.AptAmount),
		TokenAmount: check.amount("token_amount", p.TokenAmount),
		FeeAmount:   check.amount("fee_amount", p.FeeAmount),
	}
	if err := check.err(); err != nil {
		return nil, err
	}
	return sold, nil
}

func decodePoolGraduated(event model.Event) (DomainEvent, error) {
	var p poolGraduatedPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		return nil, fmt.Errorf("decode PoolGraduatedEvent: %w", err)
	}
	if p.FAObjAddr == "" {
		return nil, fmt.Errorf("decode PoolGraduatedEvent: missing fa_obj_addr")
	}
	return PoolGraduated{
		FAAddress:   string(p.FAObjAddr),
		AptReserves: p.AptReserves.value,
	}, nil
}

func telemetry(name string) func(model.Event) (DomainEvent, error) {
	return func(event model.Event) (DomainEvent, error) {
		return DexTelemetry{Name: name, Type: event.Type, Data: event.Data}, nil
	}
}
