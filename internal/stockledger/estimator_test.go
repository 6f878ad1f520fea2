package stockledger

import (
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

func batch(available int64, est string) Batch {
	return Batch{
		EstimatedResaleCost: dec(est),
		OriginalQuantity:    available,
		AvailableQuantity:   available,
	}
}

func TestEstimatedUnitCostWeightedAcrossBatches(t *testing.T) {
	v := Variant{
		CurrentBuyPrice: dec("7"),
		Batches:         []Batch{batch(5, "10"), batch(5, "20")},
	}
	// 5@10 + 3@20 = 110, over 8 units = 13.75
	got := EstimatedUnitCost(v, 8)
	if !got.Equal(dec("13.75")) {
		t.Fatalf("expected 13.75, got %s", got)
	}
}

func TestEstimatedUnitCostSingleUnit(t *testing.T) {
	v := Variant{
		CurrentBuyPrice: dec("7"),
		Batches:         []Batch{batch(5, "10"), batch(5, "20")},
	}
	got := EstimatedUnitCost(v, 1)
	if !got.Equal(dec("10")) {
		t.Fatalf("oldest batch must price the first unit, got %s", got)
	}
}

func TestEstimatedUnitCostCapsAtAvailable(t *testing.T) {
	v := Variant{
		CurrentBuyPrice: dec("7"),
		Batches:         []Batch{batch(2, "10"), batch(2, "30")},
	}
	// Only 4 units exist; a request for 10 prices those 4: (20+60)/4 = 20.
	got := EstimatedUnitCost(v, 10)
	if !got.Equal(dec("20")) {
		t.Fatalf("expected 20, got %s", got)
	}
}

func TestEstimatedUnitCostSkipsExhaustedBatches(t *testing.T) {
	v := Variant{
		CurrentBuyPrice: dec("7"),
		Batches: []Batch{
			{EstimatedResaleCost: dec("5"), OriginalQuantity: 10, AvailableQuantity: 0},
			batch(4, "12"),
		},
	}
	got := EstimatedUnitCost(v, 2)
	if !got.Equal(dec("12")) {
		t.Fatalf("exhausted batch must not contribute, got %s", got)
	}
}

func TestEstimatedUnitCostFallbacks(t *testing.T) {
	noStock := Variant{CurrentBuyPrice: dec("9.90")}
	if got := EstimatedUnitCost(noStock, 3); !got.Equal(dec("9.90")) {
		t.Fatalf("no batches must fall back to buy price, got %s", got)
	}

	exhausted := Variant{
		CurrentBuyPrice: dec("9.90"),
		Batches:         []Batch{{EstimatedResaleCost: dec("5"), OriginalQuantity: 5, AvailableQuantity: 0}},
	}
	if got := EstimatedUnitCost(exhausted, 3); !got.Equal(dec("9.90")) {
		t.Fatalf("zero availability must fall back to buy price, got %s", got)
	}

	if got := EstimatedUnitCost(exhausted, 0); !got.Equal(dec("9.90")) {
		t.Fatalf("non-positive request must fall back to buy price, got %s", got)
	}

	zeroEstimates := Variant{
		CurrentBuyPrice: dec("9.90"),
		Batches:         []Batch{batch(5, "0")},
	}
	if got := EstimatedUnitCost(zeroEstimates, 2); !got.Equal(dec("9.90")) {
		t.Fatalf("all-zero estimates must fall back to buy price, got %s", got)
	}
}

func TestEstimatedUnitCostStaysWithinBatchBounds(t *testing.T) {
	v := Variant{
		CurrentBuyPrice: dec("1"),
		Batches:         []Batch{batch(3, "8"), batch(3, "14"), batch(3, "11")},
	}
	got := EstimatedUnitCost(v, 7)
	if got.LessThan(dec("8")) || got.GreaterThan(dec("14")) {
		t.Fatalf("weighted estimate %s outside consumed batch bounds [8,14]", got)
	}
}

func TestTotalAvailableIgnoresNegative(t *testing.T) {
	v := Variant{Batches: []Batch{batch(3, "1"), {AvailableQuantity: -2}}}
	if got := TotalAvailable(v); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestEstimatedUnitCostRounding(t *testing.T) {
	v := Variant{
		CurrentBuyPrice: dec("1"),
		Batches:         []Batch{batch(1, "10"), batch(1, "10"), batch(1, "11")},
	}
	// (10+10+11)/3 = 10.333... rounds to 10.33
	got := EstimatedUnitCost(v, 3)
	if !got.Equal(dec("10.33")) {
		t.Fatalf("expected 10.33, got %s", got)
	}
}
