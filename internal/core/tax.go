package core

import "github.com/shopspring/decimal"

// Withholding rates for service invoices under EFD-Reinf reporting:
// IR at 1.5% of the gross amount, CSRF (PIS/COFINS/CSLL combined) at 4.65%.
var (
	rateIR   = decimal.New(15, -3)  // 0.015
	rateCSRF = decimal.New(465, -4) // 0.0465

	// collectionFloor is the legal minimum below which a withholding is not
	// collected. Each tax is waived on its own; the two are not joint.
	collectionFloor = decimal.New(10, 0)
)

// ComputeWithholdings maps a gross invoice amount to the two withheld amounts.
// Each raw amount is rounded half-up to two places and then waived to zero
// when below the collection floor. The function is total: zero or negative
// gross yields zero for both.
func ComputeWithholdings(gross Money) (ir, csrf Money) {
	return withhold(gross, rateIR), withhold(gross, rateCSRF)
}

func withhold(gross Money, rate decimal.Decimal) Money {
	raw := gross.Decimal().Mul(rate).Round(2)
	if raw.LessThan(collectionFloor) {
		return Money{}
	}
	return FromDecimal(raw)
}
