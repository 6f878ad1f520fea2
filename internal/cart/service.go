package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/catalog"
	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/stockledger"
)

// VariantResolver looks up a variant with its full batch history. The
// catalog service implements it.
type VariantResolver interface {
	Variant(ctx context.Context, productID, variantID string) (stockledger.Variant, string, error)
}

// Service applies terminal actions to cart sessions. Every mutation is a
// load-modify-store cycle against the Redis snapshot.
type Service struct {
	Store   *Store
	Catalog VariantResolver
	Logger  *zerolog.Logger
}

// Open starts a cart session bound to a register.
func (s *Service) Open(ctx context.Context, registerID, entityID string) (*Cart, error) {
	if strings.TrimSpace(registerID) == "" {
		return nil, common.ValidationError("register id is required")
	}
	c, err := s.Store.Create(ctx, registerID, entityID)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info().Str("cart_id", c.ID).Str("register_id", registerID).Msg("cart opened")
	}
	return c, nil
}

// Get loads a cart session.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// AddLine adds one unit of a variant. New lines are priced from the variant's
// batch ledger at quantity one; re-added variants keep their existing rate.
func (s *Service) AddLine(ctx context.Context, cartID, productID, variantID string) (*Cart, error) {
	variant, name, err := s.Catalog.Variant(ctx, productID, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			return nil, common.NotFoundError("variant not found")
		}
		return nil, err
	}
	rate := stockledger.EstimatedUnitCost(variant, 1)
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		c.AddLine(productID, variantID, name, rate)
		return nil
	})
	return c, mapErr(err)
}

// UpdateLine applies a quantity delta and/or a manual rate override to one
// line.
func (s *Service) UpdateLine(ctx context.Context, cartID string, index int, quantityDelta *int64, rate *decimal.Decimal) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		if quantityDelta != nil {
			if err := c.AdjustQuantity(index, *quantityDelta); err != nil {
				return err
			}
		}
		if rate != nil {
			if err := c.SetRate(index, *rate); err != nil {
				return err
			}
		}
		return nil
	})
	return c, mapErr(err)
}

// RemoveLine deletes one line.
func (s *Service) RemoveLine(ctx context.Context, cartID string, index int) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		return c.RemoveLine(index)
	})
	return c, mapErr(err)
}

// AddCharge appends a blank charge row for the operator to fill in.
func (s *Service) AddCharge(ctx context.Context, cartID string) (*Cart, string, error) {
	var id string
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		id = c.AddCharge()
		return nil
	})
	return c, id, mapErr(err)
}

// UpdateCharge patches a charge's label and/or amount.
func (s *Service) UpdateCharge(ctx context.Context, cartID, chargeID string, label *string, amount *decimal.Decimal) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		return c.UpdateCharge(chargeID, label, amount)
	})
	return c, mapErr(err)
}

// RemoveCharge deletes a charge.
func (s *Service) RemoveCharge(ctx context.Context, cartID, chargeID string) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		return c.RemoveCharge(chargeID)
	})
	return c, mapErr(err)
}

// SetDiscount replaces the flat discount. Any value is accepted; the totals
// calculator clamps the result, not the input.
func (s *Service) SetDiscount(ctx context.Context, cartID string, amount decimal.Decimal) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		c.Discount = amount
		return nil
	})
	return c, mapErr(err)
}

// SetCustomer attaches or clears the customer on the session.
func (s *Service) SetCustomer(ctx context.Context, cartID, entityID string) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		c.EntityID = entityID
		return nil
	})
	return c, mapErr(err)
}

// AddPayment appends a settlement allocation.
func (s *Service) AddPayment(ctx context.Context, cartID, accountID string, amount decimal.Decimal, details string) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		c.AddPayment(accountID, amount, details)
		return nil
	})
	return c, mapErr(err)
}

// UpdatePayment replaces one allocation's amount.
func (s *Service) UpdatePayment(ctx context.Context, cartID string, index int, amount decimal.Decimal) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		return c.UpdatePayment(index, amount)
	})
	return c, mapErr(err)
}

// RemovePayment deletes one allocation.
func (s *Service) RemovePayment(ctx context.Context, cartID string, index int) (*Cart, error) {
	c, err := s.Store.Mutate(ctx, cartID, func(c *Cart) error {
		return c.RemovePayment(index)
	})
	return c, mapErr(err)
}

// Abandon drops the session entirely.
func (s *Service) Abandon(ctx context.Context, cartID string) error {
	return s.Store.Delete(ctx, cartID)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return common.NotFoundError("cart not found")
	case errors.Is(err, ErrChargeNotFound):
		return common.NotFoundError("charge not found")
	case errors.Is(err, ErrLineIndex), errors.Is(err, ErrPaymentIndex):
		return common.ValidationError(err.Error())
	default:
		return err
	}
}
