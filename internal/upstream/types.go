package upstream

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/stockledger"
)

// Product is a sellable catalog entry with its variants and their stock
// batch history, decoded as-is from the business-management API.
type Product struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Category string                `json:"category,omitempty"`
	Variants []stockledger.Variant `json:"variants"`
}

// Account is a settlement account (cash drawer, bank, e-wallet).
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Entity is a customer or supplier record used for credit sales.
type Entity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// OrderProduct is a single sold line in an order submission.
type OrderProduct struct {
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    int64           `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

// OrderCharge is an additional fee attached to an order.
type OrderCharge struct {
	Label          string          `json:"label"`
	Amount         decimal.Decimal `json:"amount"`
	BearedByEntity bool            `json:"bearedByEntity"`
}

// OrderPayment allocates part of the order total to a settlement account.
type OrderPayment struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Details   string          `json:"details,omitempty"`
}

// OrderRequest is the sale submission payload. EntityID is empty for walk-in
// sales and required by the server once payments leave a remainder.
type OrderRequest struct {
	EntityID      string          `json:"entityId,omitempty"`
	Products      []OrderProduct  `json:"products"`
	Discount      decimal.Decimal `json:"discount"`
	Charges       []OrderCharge   `json:"charges"`
	Type          string          `json:"type"`
	Payments      []OrderPayment  `json:"payments"`
	POSRegisterID string          `json:"posRegisterId"`
}

// Order is the created-order acknowledgement.
type Order struct {
	ID        string          `json:"id"`
	Number    string          `json:"number,omitempty"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CloseRegisterRequest posts the counted drawer balance when closing.
type CloseRegisterRequest struct {
	ActualClosingBalance decimal.Decimal `json:"actualClosingBalance"`
}

// Error is a non-2xx response from the business-management API.
type Error struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Status, e.Body)
}
