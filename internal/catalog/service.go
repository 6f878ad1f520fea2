// Package catalog serves the terminal's read side of the business-management
// API: the product grid, settlement accounts, and the customer directory.
// Product views are enriched with computed availability and a FIFO-estimated
// unit cost so the terminal can price a line without another round trip.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/stockledger"
	"github.com/noah-isme/pos-terminal/internal/upstream"
)

// ErrVariantNotFound indicates the requested product/variant pair is not in
// the catalog snapshot.
var ErrVariantNotFound = errors.New("variant not found")

// Upstream is the subset of the API client the catalog reads from.
type Upstream interface {
	Products(ctx context.Context) ([]upstream.Product, error)
	Accounts(ctx context.Context) ([]upstream.Account, error)
	Entities(ctx context.Context) ([]upstream.Entity, error)
}

// VariantView is a variant as shown on the product grid: batch history
// collapsed into availability and a suggested unit rate.
type VariantView struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Available         int64           `json:"available"`
	EstimatedUnitCost decimal.Decimal `json:"estimatedUnitCost"`
}

// ProductView is a product entry on the terminal grid.
type ProductView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category,omitempty"`
	Variants []VariantView `json:"variants"`
}

// Service assembles terminal-facing catalog views with a Redis read-through
// cache in front of the upstream API.
type Service struct {
	upstream Upstream
	cache    *Cache
	logger   *zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Upstream Upstream
	Cache    *Cache
	Logger   *zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Upstream == nil {
		return nil, errors.New("catalog: upstream client is required")
	}
	return &Service{upstream: cfg.Upstream, cache: cfg.Cache, logger: cfg.Logger}, nil
}

// ListProducts returns the product grid. Cached snapshots are served as-is;
// a cache read failure falls through to the upstream call.
func (s *Service) ListProducts(ctx context.Context) ([]ProductView, error) {
	var cached []ProductView
	hit, err := s.cache.GetJSON(ctx, keyProducts, &cached)
	if err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("catalog cache read failed")
	}
	if hit {
		return cached, nil
	}

	products, err := s.rawProducts(ctx)
	if err != nil {
		return nil, common.UpstreamError("could not load products", err)
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		view := ProductView{ID: p.ID, Name: p.Name, Category: p.Category}
		view.Variants = make([]VariantView, 0, len(p.Variants))
		for _, v := range p.Variants {
			view.Variants = append(view.Variants, VariantView{
				ID:                v.ID,
				Name:              v.Name,
				Available:         stockledger.TotalAvailable(v),
				EstimatedUnitCost: stockledger.EstimatedUnitCost(v, 1),
			})
		}
		views = append(views, view)
	}
	if err := s.cache.SetJSON(ctx, keyProducts, views); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("catalog cache write failed")
	}
	return views, nil
}

// Variant resolves a product/variant pair and returns the raw variant with
// its batch history plus a display name. Cart line pricing goes through here
// so a line is always priced from the full ledger, never a collapsed view.
func (s *Service) Variant(ctx context.Context, productID, variantID string) (stockledger.Variant, string, error) {
	products, err := s.rawProducts(ctx)
	if err != nil {
		return stockledger.Variant{}, "", common.UpstreamError("could not load products", err)
	}
	for _, p := range products {
		if p.ID != productID {
			continue
		}
		for _, v := range p.Variants {
			if v.ID == variantID {
				name := p.Name
				if v.Name != "" {
					name = fmt.Sprintf("%s (%s)", p.Name, v.Name)
				}
				return v, name, nil
			}
		}
	}
	return stockledger.Variant{}, "", ErrVariantNotFound
}

// Accounts returns the settlement account picker, cached.
func (s *Service) Accounts(ctx context.Context) ([]upstream.Account, error) {
	var cached []upstream.Account
	if hit, _ := s.cache.GetJSON(ctx, keyAccounts, &cached); hit {
		return cached, nil
	}
	accounts, err := s.upstream.Accounts(ctx)
	if err != nil {
		return nil, common.UpstreamError("could not load accounts", err)
	}
	_ = s.cache.SetJSON(ctx, keyAccounts, accounts)
	return accounts, nil
}

// Entities returns the customer picker, cached.
func (s *Service) Entities(ctx context.Context) ([]upstream.Entity, error) {
	var cached []upstream.Entity
	if hit, _ := s.cache.GetJSON(ctx, keyEntities, &cached); hit {
		return cached, nil
	}
	entities, err := s.upstream.Entities(ctx)
	if err != nil {
		return nil, common.UpstreamError("could not load entities", err)
	}
	_ = s.cache.SetJSON(ctx, keyEntities, entities)
	return entities, nil
}

// InvalidateProducts drops the cached product snapshot.
func (s *Service) InvalidateProducts(ctx context.Context) {
	s.cache.Invalidate(ctx)
}

// rawProducts keeps the unaggregated batch histories in their own cache
// entry; line pricing needs the full ledger, not the grid view.
func (s *Service) rawProducts(ctx context.Context) ([]upstream.Product, error) {
	var cached []upstream.Product
	if hit, _ := s.cache.GetJSON(ctx, keyProductsRaw, &cached); hit {
		return cached, nil
	}
	products, err := s.upstream.Products(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, keyProductsRaw, products)
	return products, nil
}
