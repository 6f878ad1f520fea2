package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAddLineMergesByProductVariant(t *testing.T) {
	c := New("reg-1")
	c.AddLine("p1", "v1", "Small", dec("10"))
	c.AddLine("p1", "v2", "Large", dec("12"))
	c.AddLine("p1", "v1", "Small", dec("99"))

	if len(c.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Lines))
	}
	if c.Lines[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", c.Lines[0].Quantity)
	}
	if !c.Lines[0].UnitRate.Equal(dec("10")) {
		t.Fatalf("merge must keep the original rate, got %s", c.Lines[0].UnitRate)
	}
	if c.Lines[0].RateSource != RateSourceCatalog {
		t.Fatalf("new lines carry catalog provenance, got %q", c.Lines[0].RateSource)
	}
}

func TestAdjustQuantityFloorsAtOne(t *testing.T) {
	c := New("reg-1")
	c.AddLine("p1", "v1", "Small", dec("10"))

	if err := c.AdjustQuantity(0, 4); err != nil {
		t.Fatal(err)
	}
	if c.Lines[0].Quantity != 5 {
		t.Fatalf("expected 5, got %d", c.Lines[0].Quantity)
	}
	if err := c.AdjustQuantity(0, -10); err != nil {
		t.Fatal(err)
	}
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("quantity must floor at 1, got %d", c.Lines[0].Quantity)
	}
	if err := c.AdjustQuantity(3, 1); !errors.Is(err, ErrLineIndex) {
		t.Fatalf("expected ErrLineIndex, got %v", err)
	}
}

func TestSetRateRecordsProvenance(t *testing.T) {
	c := New("reg-1")
	c.AddLine("p1", "v1", "Small", dec("10"))
	if err := c.SetRate(0, dec("7.50")); err != nil {
		t.Fatal(err)
	}
	if !c.Lines[0].UnitRate.Equal(dec("7.50")) {
		t.Fatalf("expected 7.50, got %s", c.Lines[0].UnitRate)
	}
	if c.Lines[0].RateSource != RateSourceManual {
		t.Fatalf("expected manual provenance, got %q", c.Lines[0].RateSource)
	}
}

func TestRemoveLinePreservesOrder(t *testing.T) {
	c := New("reg-1")
	c.AddLine("p1", "v1", "A", dec("1"))
	c.AddLine("p2", "v1", "B", dec("2"))
	c.AddLine("p3", "v1", "C", dec("3"))
	if err := c.RemoveLine(1); err != nil {
		t.Fatal(err)
	}
	if len(c.Lines) != 2 || c.Lines[0].DisplayName != "A" || c.Lines[1].DisplayName != "C" {
		t.Fatalf("unexpected lines after removal: %+v", c.Lines)
	}
}

func TestChargeLifecycle(t *testing.T) {
	c := New("reg-1")
	id := c.AddCharge()
	if len(c.Charges) != 1 || c.Charges[0].Label != "" || !c.Charges[0].Amount.IsZero() {
		t.Fatalf("new charge must be blank: %+v", c.Charges)
	}

	label := "delivery"
	amount := dec("-5")
	if err := c.UpdateCharge(id, &label, &amount); err != nil {
		t.Fatal(err)
	}
	if c.Charges[0].Label != "delivery" || !c.Charges[0].Amount.Equal(dec("-5")) {
		t.Fatalf("negative charge amounts are permitted: %+v", c.Charges[0])
	}

	if err := c.UpdateCharge("missing", &label, nil); !errors.Is(err, ErrChargeNotFound) {
		t.Fatalf("expected ErrChargeNotFound, got %v", err)
	}
	if err := c.RemoveCharge(id); err != nil {
		t.Fatal(err)
	}
	if len(c.Charges) != 0 {
		t.Fatalf("expected empty charges, got %+v", c.Charges)
	}
}

func TestPaymentsAllowDuplicateAccounts(t *testing.T) {
	c := New("reg-1")
	c.AddPayment("cash", dec("40"), "")
	c.AddPayment("cash", dec("20"), "second swipe")
	if len(c.Payments) != 2 {
		t.Fatalf("split payments on one account must not merge: %+v", c.Payments)
	}
	if err := c.UpdatePayment(1, dec("25")); err != nil {
		t.Fatal(err)
	}
	if !c.Payments[1].Amount.Equal(dec("25")) {
		t.Fatalf("expected 25, got %s", c.Payments[1].Amount)
	}
	if err := c.RemovePayment(0); err != nil {
		t.Fatal(err)
	}
	if len(c.Payments) != 1 || c.Payments[0].Details != "second swipe" {
		t.Fatalf("unexpected payments after removal: %+v", c.Payments)
	}
	if err := c.UpdatePayment(5, dec("1")); !errors.Is(err, ErrPaymentIndex) {
		t.Fatalf("expected ErrPaymentIndex, got %v", err)
	}
}

func TestTotalsReflectCartState(t *testing.T) {
	c := New("reg-1")
	c.AddLine("p1", "v1", "A", dec("100"))
	if err := c.AdjustQuantity(0, 1); err != nil {
		t.Fatal(err)
	}
	id := c.AddCharge()
	amount := dec("10")
	if err := c.UpdateCharge(id, nil, &amount); err != nil {
		t.Fatal(err)
	}
	c.Discount = dec("50")
	c.AddPayment("cash", dec("50"), "")

	totals := c.Totals()
	if !totals.Total.Equal(dec("160")) {
		t.Fatalf("expected total 160, got %s", totals.Total)
	}
	if !totals.Remaining.Equal(dec("110")) {
		t.Fatalf("expected remaining 110, got %s", totals.Remaining)
	}

	c.Clear()
	cleared := c.Totals()
	if !cleared.Total.IsZero() || cleared.ItemCount != 0 || !c.Discount.IsZero() {
		t.Fatalf("clear must reset every collection: %+v", cleared)
	}
}
