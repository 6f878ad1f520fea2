package pricing

import "github.com/shopspring/decimal"

// Line describes a cart line used for totals calculation.
type Line struct {
	UnitRate decimal.Decimal
	Quantity int64
}

// Charge is a named additive fee applied on top of the subtotal.
type Charge struct {
	Amount decimal.Decimal
}

// Payment is a single settlement allocation against the sale total.
type Payment struct {
	Amount decimal.Decimal
}

// Totals aggregates the derived figures of a sale.
type Totals struct {
	Subtotal     decimal.Decimal
	ChargesTotal decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	TotalPaid    decimal.Decimal
	Remaining    decimal.Decimal
	ItemCount    int64
}

// Compute calculates sale totals given the provided inputs. The clamp applies
// to the total, not the discount: a discount larger than subtotal plus charges
// yields a zero total, never a negative one. Remaining is likewise floored at
// zero when payments exceed the total.
func Compute(lines []Line, charges []Charge, discount decimal.Decimal, payments []Payment) Totals {
	subtotal := decimal.Zero
	var itemCount int64
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(ln.UnitRate.Mul(decimal.NewFromInt(ln.Quantity)))
		itemCount += ln.Quantity
	}

	chargesTotal := decimal.Zero
	for _, c := range charges {
		chargesTotal = chargesTotal.Add(c.Amount)
	}

	total := subtotal.Add(chargesTotal).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Totals{
		Subtotal:     subtotal,
		ChargesTotal: chargesTotal,
		Discount:     discount,
		Total:        total,
		TotalPaid:    paid,
		Remaining:    remaining,
		ItemCount:    itemCount,
	}
}
