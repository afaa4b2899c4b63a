package launchpad

import (
	"encoding/json"
	"strings"
	"testing"

	"curveScope/internal/model"
)

const testContract = "0x4660906d4ed4062029a19e989e51c814aa5b0711ef0ba0433b5f7487cb03b257"

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	decoder, err := NewDecoder(DecoderConfig{Contract: testContract})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return decoder
}

func contractEvent(module, name, data string) model.Event {
	return model.Event{
		Type: testContract + "::" + module + "::" + name,
		Data: json.RawMessage(data),
	}
}

func TestDecodeCreateFAWrappedFields(t *testing.T) {
	decoder := newTestDecoder(t)

	event := contractEvent("token_factory", "CreateFAEvent", `{
		"creator_addr": "0xc0ffee",
		"fa_obj": {"inner": "0xaa"},
		"max_supply": {"vec": ["1000000000"]},
		"name": "Foo",
		"symbol": "FOO",
		"decimals": 6,
		"icon_uri": "https://example.com/foo.png",
		"project_uri": "https://example.com",
		"mint_fee_per_smallest_unit_of_fa": "5"
	}`)

	decoded, err := decoder.Decode(event)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	created, ok := decoded.(AssetCreated)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", decoded)
	}
	if created.Address != "0xaa" || created.Name != "Foo" || created.Symbol != "FOO" || created.Decimals != 6 {
		t.Fatalf("asset mismatch: %+v", created)
	}
	if created.MaxSupply == nil || created.MaxSupply.String() != "1000000000" {
		t.Fatalf("max supply mismatch: %v", created.MaxSupply)
	}
	if created.MintFeePerUnit.String() != "5" {
		t.Fatalf("mint fee mismatch: %s", created.MintFeePerUnit)
	}
}

func TestDecodeCreateFABareFields(t *testing.T) {
	decoder := newTestDecoder(t)

	cases := []struct {
		name      string
		maxSupply string
		want      string
	}{
		{name: "bare string", maxSupply: `"42"`, want: "42"},
		{name: "empty option", maxSupply: `{"vec": []}`, want: ""},
		{name: "null", maxSupply: `null`, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := contractEvent("token_factory", "CreateFAEvent", `{
				"creator_addr": "0x1",
				"fa_obj": "0xbb",
				"max_supply": `+tc.maxSupply+`,
				"name": "Bar",
				"symbol": "BAR",
				"decimals": "8",
				"mint_fee_per_smallest_unit_of_fa": "0"
			}`)
			decoded, err := decoder.Decode(event)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			created := decoded.(AssetCreated)
			if created.Address != "0xbb" || created.Decimals != 8 {
				t.Fatalf("asset mismatch: %+v", created)
			}
			got := ""
			if created.MaxSupply != nil {
				got = created.MaxSupply.String()
			}
			if got != tc.want {
				t.Fatalf("max supply = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeTradeEvents(t *testing.T) {
	decoder := newTestDecoder(t)

	buy, err := decoder.Decode(contractEvent("bonding_curve_pool", "BuyTokensEvent",
		`{"buyer":"0x2","fa_obj_addr":"0xaa","apt_amount":"1000000","token_amount":"500","fee_amount":"10000"}`))
	if err != nil {
		t.Fatalf("decode buy: %v", err)
	}
	purchase, ok := buy.(TokensPurchased)
	if !ok {
		t.Fatalf("buy type mismatch: %T", buy)
	}
	if purchase.AptAmount.String() != "1000000" || purchase.FeeAmount.String() != "10000" || purchase.TokenAmount.String() != "500" {
		t.Fatalf("buy mismatch: %+v", purchase)
	}

	sell, err := decoder.Decode(contractEvent("bonding_curve_pool", "TokensSoldEvent",
		`{"seller":"0x3","fa_obj_addr":{"inner":"0xaa"},"apt_amount":"700","token_amount":"70","fee_amount":"7"}`))
	if err != nil {
		t.Fatalf("decode sell: %v", err)
	}
	sale := sell.(TokensSold)
	if sale.FAAddress != "0xaa" || sale.Seller != "0x3" {
		t.Fatalf("sell mismatch: %+v", sale)
	}

	grad, err := decoder.Decode(contractEvent("graduation_handler", "PoolGraduatedEvent", `{"fa_obj_addr":"0xaa"}`))
	if err != nil {
		t.Fatalf("decode graduation: %v", err)
	}
	if grad.Kind() != KindPoolGraduated {
		t.Fatalf("graduation kind = %s", grad.Kind())
	}
}

func TestDecodeHugeAmountsKeepPrecision(t *testing.T) {
	decoder := newTestDecoder(t)

	decoded, err := decoder.Decode(contractEvent("token_factory", "MintFAEvent",
		`{"fa_obj":"0xaa","amount":"18446744073709551615123","recipient_addr":"0x9","total_mint_fee":"99999999999999999999"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	mint := decoded.(AssetMinted)
	if mint.Amount.String() != "18446744073709551615123" {
		t.Fatalf("amount lost precision: %s", mint.Amount)
	}
}

func TestDecodeTelemetryAndUnknown(t *testing.T) {
	decoder := newTestDecoder(t)

	decoded, err := decoder.Decode(contractEvent("router", "LiquidityAddedEvent", `{}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tel, ok := decoded.(DexTelemetry)
	if !ok || tel.Name != "liquidity_added" {
		t.Fatalf("telemetry mismatch: %#v", decoded)
	}

	decoded, err = decoder.Decode(contractEvent("router", "SomethingNewEvent", `{}`))
	if err != nil {
		t.Fatalf("decode unknown: %v", err)
	}
	if decoded.Kind() != KindUnrecognized {
		t.Fatalf("unknown kind = %s", decoded.Kind())
	}
}

func TestDecodeErrors(t *testing.T) {
	decoder := newTestDecoder(t)

	cases := []model.Event{
		contractEvent("token_factory", "CreateFAEvent", `{"name":"x"}`),
		contractEvent("token_factory", "MintFAEvent", `{"fa_obj":"0xaa","amount":"not-a-number"}`),
		contractEvent("bonding_curve_pool", "BuyTokensEvent", `[1,2,3]`),
		{Type: "0x1::coin::CoinDeposit", Data: json.RawMessage(`{}`)},
	}
	for i, event := range cases {
		if _, err := decoder.Decode(event); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDecodeRejectsMissingAmounts(t *testing.T) {
	decoder := newTestDecoder(t)

	cases := []struct {
		name  string
		event model.Event
		field string
	}{
		{
			name:  "purchase",
			event: contractEvent("bonding_curve_pool", "BuyTokensEvent", `{"buyer":"0x2","fa_obj_addr":"0xaa"}`),
			field: "apt_amount, token_amount, fee_amount",
		},
		{
			name:  "sale fee null",
			event: contractEvent("bonding_curve_pool", "SellTokensEvent", `{"seller":"0x3","fa_obj_addr":"0xaa","apt_amount":"7","token_amount":"1","fee_amount":null}`),
			field: "fee_amount",
		},
		{
			name:  "mint",
			event: contractEvent("token_factory", "MintFAEvent", `{"fa_obj":"0xaa","recipient_addr":"0x9","amount":"5"}`),
			field: "total_mint_fee",
		},
		{
			name:  "burn",
			event: contractEvent("token_factory", "BurnFAEvent", `{"fa_obj":"0xaa","burner_addr":"0x9"}`),
			field: "amount",
		},
		{
			name:  "create",
			event: contractEvent("token_factory", "CreateFAEvent", `{"fa_obj":"0xbb","name":"Bar","symbol":"BAR","decimals":8}`),
			field: "mint_fee_per_smallest_unit_of_fa",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decoder.Decode(tc.event)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasSuffix(err.Error(), "missing "+tc.field) {
				t.Fatalf("error = %q, want missing %s", err, tc.field)
			}
		})
	}
}

func TestDecodePurchaseCall(t *testing.T) {
	decoder := newTestDecoder(t)

	tx := model.Transaction{
		Hash:   "0xtx",
		Sender: "0xbuyer",
		Payload: &model.FunctionPayload{
			Function:  testContract + "::bonding_curve_pool::buy_tokens",
			Arguments: []json.RawMessage{json.RawMessage(`"0xaa"`), json.RawMessage(`"250000"`)},
		},
		Events: []model.Event{
			{Type: "0x1::fungible_asset::Withdraw", Data: json.RawMessage(`{"amount":"250000"}`)},
			{Type: "0x1::fungible_asset::Deposit", Data: json.RawMessage(`{"amount":"0"}`)},
			{Type: "0x1::fungible_asset::Deposit", Data: json.RawMessage(`{"amount":"1234"}`)},
		},
	}

	call, err := decoder.DecodePurchaseCall(tx)
	if err != nil {
		t.Fatalf("decode call: %v", err)
	}
	if call.FAAddress != "0xaa" || call.Buyer != "0xbuyer" || call.GrossAmount.String() != "250000" {
		t.Fatalf("call mismatch: %+v", call)
	}
	if call.TokenAmount.String() != "1234" {
		t.Fatalf("token amount = %s", call.TokenAmount)
	}

	tx.Events = nil
	call, err = decoder.DecodePurchaseCall(tx)
	if err != nil {
		t.Fatalf("decode call: %v", err)
	}
	if !call.TokenAmount.IsZero() {
		t.Fatalf("expected zero token amount, got %s", call.TokenAmount)
	}

	tx.Payload.Arguments = tx.Payload.Arguments[:1]
	if _, err := decoder.DecodePurchaseCall(tx); err == nil {
		t.Fatalf("expected error for missing argument")
	}
}

func TestNewDecoderRejectsBadContract(t *testing.T) {
	if _, err := NewDecoder(DecoderConfig{Contract: "not-hex"}); err == nil {
		t.Fatalf("expected error")
	}
}
