package engine

import "github.com/shopspring/decimal"

var (
	hundred  = decimal.NewFromInt(100)
	one      = decimal.NewFromInt(1)
	twenty   = decimal.New(2, -1) // 0.20
	fifty    = decimal.New(5, -1) // 0.50
	fracLow  = decimal.NewFromInt(10)
	fracMid  = decimal.NewFromInt(35)
	fracHigh = decimal.NewFromInt(75)
)

// RoundDenomination snaps a raw amount to the coin denominations actually in
// circulation: whole units plus the 0.20 and 0.50 pieces. The cent value
// decides the bucket:
//
//	 0–9  → down to the whole unit
//	10–34 → .20
//	35–74 → .50
//	75–99 → up to the next whole unit
//
// The function is idempotent: .00, .20 and .50 all map to themselves.
func RoundDenomination(raw decimal.Decimal) decimal.Decimal {
	whole := raw.Floor()
	cents := raw.Sub(whole).Mul(hundred).Round(0)
	switch {
	case cents.LessThan(fracLow):
		return whole
	case cents.LessThan(fracMid):
		return whole.Add(twenty)
	case cents.LessThan(fracHigh):
		return whole.Add(fifty)
	default:
		return whole.Add(one)
	}
}
