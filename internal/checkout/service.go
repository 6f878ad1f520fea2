// Package checkout turns a cart session into a durable upstream order. The
// submission is the one moment the terminal writes through to the
// business-management API; everything before it is local session state.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/cart"
	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/lock"
	"github.com/noah-isme/pos-terminal/internal/obs"
	"github.com/noah-isme/pos-terminal/internal/pricing"
	"github.com/noah-isme/pos-terminal/internal/receipt"
	"github.com/noah-isme/pos-terminal/internal/upstream"
)

// OrderCreator is the slice of the upstream client the checkout writes to.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req upstream.OrderRequest) (upstream.Order, error)
}

// CacheInvalidator drops stale catalog snapshots after stock changed.
type CacheInvalidator interface {
	InvalidateProducts(ctx context.Context)
}

// Input carries the submission parameters. EntityID, when set, overrides the
// customer attached to the session.
type Input struct {
	CartID   string
	EntityID string
}

// Result is the acknowledgement returned to the terminal.
type Result struct {
	OrderID   string          `json:"orderId"`
	Number    string          `json:"number,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Service coordinates validation, the in-flight guard, the upstream write,
// and the post-success cleanup.
type Service struct {
	Carts    *cart.Store
	Upstream OrderCreator
	Lock     lock.Locker
	LockTTL  time.Duration
	Receipts *receipt.Store
	Catalog  CacheInvalidator
	Currency string
	Logger   *zerolog.Logger
}

// Submit validates and posts the sale. The cart survives every failure; it
// is deleted only after the upstream order call has succeeded. The order
// call itself is never retried, so a transport failure may or may not have
// created an order upstream and is surfaced to the operator unresolved.
func (s *Service) Submit(ctx context.Context, in Input) (Result, error) {
	var result Result
	err := s.Lock.TryWithLock(ctx, "checkout:"+in.CartID, s.lockTTL(), func(ctx context.Context) error {
		var err error
		result, err = s.submit(ctx, in)
		return err
	})
	if errors.Is(err, lock.ErrHeld) {
		s.count("conflict")
		return Result{}, common.ConflictError("checkout already in progress")
	}
	return result, err
}

func (s *Service) submit(ctx context.Context, in Input) (Result, error) {
	c, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			s.count("not_found")
			return Result{}, common.NotFoundError("cart not found")
		}
		return Result{}, err
	}

	if in.EntityID != "" {
		c.EntityID = in.EntityID
	}
	if len(c.Lines) == 0 {
		s.count("validation")
		return Result{}, common.ValidationError("empty cart")
	}
	totals := c.Totals()
	if totals.Remaining.Sign() > 0 && c.EntityID == "" {
		s.count("validation")
		return Result{}, common.ValidationError("customer required for credit sale")
	}

	order, err := s.Upstream.CreateOrder(ctx, buildOrderRequest(c))
	if err != nil {
		s.count("upstream")
		if s.Logger != nil {
			s.Logger.Error().Err(err).Str("cart_id", c.ID).Msg("order submission failed")
		}
		return Result{}, common.UpstreamError("order submission failed", err)
	}

	snap := buildSnapshot(c, order, totals, s.Currency)
	if s.Receipts != nil {
		if err := s.Receipts.Save(ctx, snap); err != nil && s.Logger != nil {
			s.Logger.Warn().Err(err).Str("order_id", order.ID).Msg("receipt snapshot not retained")
		}
	}
	if err := s.Carts.Delete(ctx, c.ID); err != nil && s.Logger != nil {
		s.Logger.Warn().Err(err).Str("cart_id", c.ID).Msg("cart cleanup failed after order")
	}
	if s.Catalog != nil {
		s.Catalog.InvalidateProducts(ctx)
	}
	s.count("ok")
	if s.Logger != nil {
		s.Logger.Info().
			Str("cart_id", c.ID).
			Str("order_id", order.ID).
			Str("register_id", c.RegisterID).
			Str("total", totals.Total.StringFixed(2)).
			Msg("sale submitted")
	}

	return Result{
		OrderID:   order.ID,
		Number:    order.Number,
		Total:     totals.Total,
		Remaining: totals.Remaining,
		CreatedAt: order.CreatedAt,
	}, nil
}

func (s *Service) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return 30 * time.Second
	}
	return s.LockTTL
}

func (s *Service) count(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}

func buildOrderRequest(c *cart.Cart) upstream.OrderRequest {
	products := make([]upstream.OrderProduct, 0, len(c.Lines))
	for _, ln := range c.Lines {
		products = append(products, upstream.OrderProduct{
			ProductID:   ln.ProductID,
			VariantID:   ln.VariantID,
			Rate:        ln.UnitRate,
			Quantity:    ln.Quantity,
			Description: ln.DisplayName,
		})
	}
	charges := make([]upstream.OrderCharge, 0, len(c.Charges))
	for _, ch := range c.Charges {
		charges = append(charges, upstream.OrderCharge{Label: ch.Label, Amount: ch.Amount})
	}
	payments := make([]upstream.OrderPayment, 0, len(c.Payments))
	for _, p := range c.Payments {
		payments = append(payments, upstream.OrderPayment{AccountID: p.AccountID, Amount: p.Amount, Details: p.Details})
	}
	return upstream.OrderRequest{
		EntityID:      c.EntityID,
		Products:      products,
		Discount:      c.Discount,
		Charges:       charges,
		Type:          "SELL",
		Payments:      payments,
		POSRegisterID: c.RegisterID,
	}
}

func buildSnapshot(c *cart.Cart, order upstream.Order, totals pricing.Totals, currency string) receipt.Snapshot {
	lines := make([]receipt.SnapshotLine, 0, len(c.Lines))
	for _, ln := range c.Lines {
		lines = append(lines, receipt.SnapshotLine{
			Name:     ln.DisplayName,
			Quantity: ln.Quantity,
			UnitRate: ln.UnitRate,
			Amount:   ln.UnitRate.Mul(decimal.NewFromInt(ln.Quantity)),
		})
	}
	charges := make([]receipt.SnapshotCharge, 0, len(c.Charges))
	for _, ch := range c.Charges {
		charges = append(charges, receipt.SnapshotCharge{Label: ch.Label, Amount: ch.Amount})
	}
	payments := make([]receipt.SnapshotPayment, 0, len(c.Payments))
	for _, p := range c.Payments {
		payments = append(payments, receipt.SnapshotPayment{AccountID: p.AccountID, Amount: p.Amount, Details: p.Details})
	}
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return receipt.Snapshot{
		OrderID:    order.ID,
		Number:     order.Number,
		RegisterID: c.RegisterID,
		EntityID:   c.EntityID,
		Currency:   currency,
		Lines:      lines,
		Charges:    charges,
		Discount:   c.Discount,
		Subtotal:   totals.Subtotal,
		Total:      totals.Total,
		TotalPaid:  totals.TotalPaid,
		Remaining:  totals.Remaining,
		Payments:   payments,
		CreatedAt:  createdAt,
	}
}
