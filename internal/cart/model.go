package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrLineIndex is returned when a line index is outside the cart.
var ErrLineIndex = errors.New("cart line index out of range")

// ErrPaymentIndex is returned when a payment index is outside the list.
var ErrPaymentIndex = errors.New("payment index out of range")

// ErrChargeNotFound is returned when no charge matches the given id.
var ErrChargeNotFound = errors.New("charge not found")

// Rate provenance markers. A manual override keeps no floor and no link back
// to the ledger estimate; the marker is the audit trail.
const (
	RateSourceCatalog = "catalog"
	RateSourceManual  = "manual"
)

// Line is one cart position, keyed by (ProductID, VariantID).
type Line struct {
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId"`
	DisplayName string          `json:"displayName"`
	UnitRate    decimal.Decimal `json:"unitRate"`
	Quantity    int64           `json:"quantity"`
	RateSource  string          `json:"rateSource"`
}

// Charge is a named additive fee on the sale.
type Charge struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Payment is one settlement allocation. The same account may appear multiple
// times; allocations are a list, not a map, so split payments survive.
type Payment struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Details   string          `json:"details,omitempty"`
}

// Cart is the in-flight sale state for one terminal session.
type Cart struct {
	ID         string          `json:"id"`
	RegisterID string          `json:"registerId"`
	EntityID   string          `json:"entityId,omitempty"`
	Lines      []Line          `json:"lines"`
	Charges    []Charge        `json:"charges"`
	Discount   decimal.Decimal `json:"discount"`
	Payments   []Payment       `json:"payments"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// New constructs an empty cart bound to a register.
func New(registerID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:         uuid.NewString(),
		RegisterID: registerID,
		Lines:      []Line{},
		Charges:    []Charge{},
		Discount:   decimal.Zero,
		Payments:   []Payment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddLine merges a variant into the cart. An existing (product, variant) line
// gains one unit and keeps its rate; a new line starts at quantity one with
// the provided rate.
func (c *Cart) AddLine(productID, variantID, displayName string, unitRate decimal.Decimal) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].VariantID == variantID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID:   productID,
		VariantID:   variantID,
		DisplayName: displayName,
		UnitRate:    unitRate,
		Quantity:    1,
		RateSource:  RateSourceCatalog,
	})
}

// AdjustQuantity applies a delta to a line's quantity, flooring at one unit.
// Removal is an explicit operation, never a side effect of decrementing.
func (c *Cart) AdjustQuantity(index int, delta int64) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineIndex
	}
	q := c.Lines[index].Quantity + delta
	if q < 1 {
		q = 1
	}
	c.Lines[index].Quantity = q
	return nil
}

// SetRate overwrites a line's unit rate unconditionally and marks it as a
// manual override.
func (c *Cart) SetRate(index int, rate decimal.Decimal) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineIndex
	}
	c.Lines[index].UnitRate = rate
	c.Lines[index].RateSource = RateSourceManual
	return nil
}

// RemoveLine deletes one line, preserving the order of the rest.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return ErrLineIndex
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// Clear resets lines, charges, discount and payments in one step.
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.Charges = []Charge{}
	c.Discount = decimal.Zero
	c.Payments = []Payment{}
}

// AddCharge appends a blank charge and returns its generated id.
func (c *Cart) AddCharge() string {
	id := uuid.NewString()
	c.Charges = append(c.Charges, Charge{ID: id, Amount: decimal.Zero})
	return id
}

// UpdateCharge patches label and/or amount of the identified charge. Nil
// fields are left untouched. Negative amounts are accepted; the totals
// calculator clamps the total, not the inputs.
func (c *Cart) UpdateCharge(id string, label *string, amount *decimal.Decimal) error {
	for i := range c.Charges {
		if c.Charges[i].ID != id {
			continue
		}
		if label != nil {
			c.Charges[i].Label = *label
		}
		if amount != nil {
			c.Charges[i].Amount = *amount
		}
		return nil
	}
	return ErrChargeNotFound
}

// RemoveCharge deletes the identified charge.
func (c *Cart) RemoveCharge(id string) error {
	for i := range c.Charges {
		if c.Charges[i].ID == id {
			c.Charges = append(c.Charges[:i], c.Charges[i+1:]...)
			return nil
		}
	}
	return ErrChargeNotFound
}

// AddPayment appends an allocation, even when the account already appears.
func (c *Cart) AddPayment(accountID string, amount decimal.Decimal, details string) {
	c.Payments = append(c.Payments, Payment{AccountID: accountID, Amount: amount, Details: details})
}

// UpdatePayment replaces the amount of one allocation.
func (c *Cart) UpdatePayment(index int, amount decimal.Decimal) error {
	if index < 0 || index >= len(c.Payments) {
		return ErrPaymentIndex
	}
	c.Payments[index].Amount = amount
	return nil
}

// RemovePayment deletes one allocation.
func (c *Cart) RemovePayment(index int) error {
	if index < 0 || index >= len(c.Payments) {
		return ErrPaymentIndex
	}
	c.Payments = append(c.Payments[:index], c.Payments[index+1:]...)
	return nil
}

// Totals recomputes the derived sale figures from the current state.
func (c *Cart) Totals() pricing.Totals {
	lines := make([]pricing.Line, 0, len(c.Lines))
	for _, ln := range c.Lines {
		lines = append(lines, pricing.Line{UnitRate: ln.UnitRate, Quantity: ln.Quantity})
	}
	charges := make([]pricing.Charge, 0, len(c.Charges))
	for _, ch := range c.Charges {
		charges = append(charges, pricing.Charge{Amount: ch.Amount})
	}
	payments := make([]pricing.Payment, 0, len(c.Payments))
	for _, p := range c.Payments {
		payments = append(payments, pricing.Payment{Amount: p.Amount})
	}
	return pricing.Compute(lines, charges, c.Discount, payments)
}
