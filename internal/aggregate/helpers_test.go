package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPricePerToken(t *testing.T) {
	cases := []struct {
		name       string
		settlement string
		tokens     string
		want       string
	}{
		{name: "zero tokens", settlement: "1000000", tokens: "0", want: "0"},
		{name: "even", settlement: "1000000", tokens: "500", want: "2000"},
		{name: "fractional", settlement: "1", tokens: "3", want: "0.333333333333333333"},
		{name: "negative sell", settlement: "-10", tokens: "4", want: "-2.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PricePerToken(decimal.RequireFromString(tc.settlement), decimal.RequireFromString(tc.tokens))
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestFeeAmount(t *testing.T) {
	cases := []struct {
		gross string
		bps   int64
		want  string
	}{
		{gross: "1000000", bps: 100, want: "10000"},
		{gross: "199", bps: 100, want: "1"},
		{gross: "99", bps: 100, want: "0"},
		{gross: "123456789012345678901234567890", bps: 100, want: "1234567890123456789012345678"},
		{gross: "1000", bps: 0, want: "0"},
	}
	for _, tc := range cases {
		got := FeeAmount(decimal.RequireFromString(tc.gross), tc.bps)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("fee(%s, %d) = %s want %s", tc.gross, tc.bps, got, tc.want)
		}
	}
}
