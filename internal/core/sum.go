package core

// Sum adds a selected money field across a record set. Zero-value fields
// contribute nothing, so missing data degrades silently.
func Sum(invs []Invoice, field func(Invoice) Money) Money {
	var total Money
	for _, inv := range invs {
		total = total.Add(field(inv))
	}
	return total
}

// Totals are the period aggregates shown in report footers.
type Totals struct {
	Gross Money
	IR    Money
	CSRF  Money
}

// TotalsFor computes the three standard aggregates over a filtered set.
func TotalsFor(invs []Invoice) Totals {
	return Totals{
		Gross: Sum(invs, func(i Invoice) Money { return i.Gross }),
		IR:    Sum(invs, func(i Invoice) Money { return i.IR }),
		CSRF:  Sum(invs, func(i Invoice) Money { return i.CSRF }),
	}
}
