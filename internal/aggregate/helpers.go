package aggregate

import "github.com/shopspring/decimal"

const (
	ratioScale = 18
	bpsDenom   = 10000
)

var bpsDivisor = decimal.NewFromInt(bpsDenom)

// PricePerToken divides settlement by asset amount; a zero asset amount
// prices at zero.
func PricePerToken(settlement, tokens decimal.Decimal) decimal.Decimal {
	if tokens.IsZero() {
		return decimal.Zero
	}
	return settlement.DivRound(tokens, ratioScale)
}

// FeeAmount is floor(gross * bps / 10000) for non-negative gross amounts.
func FeeAmount(gross decimal.Decimal, bps int64) decimal.Decimal {
	if bps <= 0 || gross.Sign() <= 0 {
		return decimal.Zero
	}
	q, _ := gross.Mul(decimal.NewFromInt(bps)).QuoRem(bpsDivisor, 0)
	return q
}
