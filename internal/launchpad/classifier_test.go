package launchpad

import (
	"encoding/json"
	"testing"

	"curveScope/internal/model"
)

func TestClassifier(t *testing.T) {
	classifier := NewClassifier(testContract)

	cases := []struct {
		name string
		tx   model.Transaction
		want bool
	}{
		{
			name: "create_fa call",
			tx:   model.Transaction{Payload: &model.FunctionPayload{Function: testContract + "::token_factory::create_fa"}},
			want: true,
		},
		{
			name: "router call",
			tx:   model.Transaction{Payload: &model.FunctionPayload{Function: testContract + "::router::swap_exact_in"}},
			want: true,
		},
		{
			name: "contract event only",
			tx: model.Transaction{
				Payload: &model.FunctionPayload{Function: "0x1::aptos_account::transfer"},
				Events:  []model.Event{{Type: testContract + "::graduation_handler::PoolGraduatedEvent", Data: json.RawMessage(`{}`)}},
			},
			want: true,
		},
		{
			name: "unrelated",
			tx: model.Transaction{
				Payload: &model.FunctionPayload{Function: "0x1::aptos_account::transfer"},
				Events:  []model.Event{{Type: "0x1::fungible_asset::Deposit"}},
			},
			want: false,
		},
		{
			name: "untracked module of the same contract",
			tx:   model.Transaction{Payload: &model.FunctionPayload{Function: testContract + "::admin::set_fee"}},
			want: false,
		},
		{
			name: "no payload",
			tx:   model.Transaction{},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.IsRelevant(tc.tx); got != tc.want {
				t.Fatalf("IsRelevant = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifierPurchaseCall(t *testing.T) {
	classifier := NewClassifier(testContract)

	buy := model.Transaction{Payload: &model.FunctionPayload{Function: testContract + "::bonding_curve_pool::buy_tokens"}}
	if !classifier.IsPurchaseCall(buy) {
		t.Fatalf("expected purchase call")
	}
	sell := model.Transaction{Payload: &model.FunctionPayload{Function: testContract + "::bonding_curve_pool::sell_tokens"}}
	if classifier.IsPurchaseCall(sell) {
		t.Fatalf("sell is not a purchase call")
	}
	routed := model.Transaction{Payload: &model.FunctionPayload{Function: testContract + "::router::buy_tokens"}}
	if !classifier.IsPurchaseCall(routed) {
		t.Fatalf("expected routed purchase call")
	}
}

func TestParseAddress(t *testing.T) {
	good := []string{"0x1", "0xAA", testContract}
	for _, input := range good {
		if _, err := ParseAddress(input); err != nil {
			t.Fatalf("ParseAddress(%q): %v", input, err)
		}
	}
	bad := []string{"", "0x", "aa", "0xzz", "0x" + testContract[2:] + "00"}
	for _, input := range bad {
		if _, err := ParseAddress(input); err == nil {
			t.Fatalf("ParseAddress(%q) expected error", input)
		}
	}
}
