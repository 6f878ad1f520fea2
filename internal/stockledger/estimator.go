// Package stockledger estimates the unit cost of a prospective sale from a
// variant's FIFO intake history. It is a pricing preview, not a cost
// allocation: nothing here mutates batch quantities. The upstream inventory
// service decrements availability once an order is actually placed.
package stockledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a single stock intake event. Batches are consumed oldest-first.
type Batch struct {
	AcquisitionCost     decimal.Decimal `json:"acquisitionCost"`
	EstimatedResaleCost decimal.Decimal `json:"estimatedResaleCost"`
	OriginalQuantity    int64           `json:"originalQuantity"`
	AvailableQuantity   int64           `json:"availableQuantity"`
	AcquiredAt          time.Time       `json:"acquiredAt"`
}

// Variant is a sellable product variant with its ordered batch history,
// oldest batch first.
type Variant struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	CurrentBuyPrice decimal.Decimal `json:"currentBuyPrice"`
	Batches         []Batch         `json:"stockBatches"`
}

// TotalAvailable sums the available quantity across all batches.
func TotalAvailable(v Variant) int64 {
	var total int64
	for _, b := range v.Batches {
		if b.AvailableQuantity > 0 {
			total += b.AvailableQuantity
		}
	}
	return total
}

// EstimatedUnitCost walks the batch history oldest-first and returns the
// quantity-weighted estimated resale cost for the requested quantity, rounded
// to two decimal places. When the request cannot be priced from the ledger
// (no stock, non-positive request, or an all-zero estimate) the variant's
// nominal buy price is returned instead.
func EstimatedUnitCost(v Variant, requestedQty int64) decimal.Decimal {
	if requestedQty <= 0 || len(v.Batches) == 0 {
		return v.CurrentBuyPrice
	}
	available := TotalAvailable(v)
	if available == 0 {
		return v.CurrentBuyPrice
	}

	toPrice := requestedQty
	if available < toPrice {
		toPrice = available
	}

	remaining := toPrice
	value := decimal.Zero
	for _, b := range v.Batches {
		if remaining <= 0 {
			break
		}
		if b.AvailableQuantity <= 0 {
			continue
		}
		take := b.AvailableQuantity
		if take > remaining {
			take = remaining
		}
		value = value.Add(b.EstimatedResaleCost.Mul(decimal.NewFromInt(take)))
		remaining -= take
	}

	unit := value.Div(decimal.NewFromInt(toPrice)).Round(2)
	if unit.IsZero() {
		return v.CurrentBuyPrice
	}
	return unit
}
