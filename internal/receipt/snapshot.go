// Package receipt renders PDF documents for completed sales and register
// close-outs. Sale receipts are rendered from a snapshot captured at
// checkout time; the upstream order is already durable by then, so the
// snapshot is the terminal's only record of what was printed.
package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no snapshot is retained for the order.
var ErrNotFound = errors.New("receipt not found")

// SnapshotLine is one printed sale line.
type SnapshotLine struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	UnitRate decimal.Decimal `json:"unitRate"`
	Amount   decimal.Decimal `json:"amount"`
}

// SnapshotCharge is one printed extra charge.
type SnapshotCharge struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// SnapshotPayment is one printed settlement allocation.
type SnapshotPayment struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Details   string          `json:"details,omitempty"`
}

// Snapshot is the immutable picture of a sale at the moment the upstream
// order was accepted.
type Snapshot struct {
	OrderID    string            `json:"orderId"`
	Number     string            `json:"number,omitempty"`
	RegisterID string            `json:"registerId"`
	EntityID   string            `json:"entityId,omitempty"`
	Currency   string            `json:"currency"`
	Lines      []SnapshotLine    `json:"lines"`
	Charges    []SnapshotCharge  `json:"charges"`
	Discount   decimal.Decimal   `json:"discount"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Total      decimal.Decimal   `json:"total"`
	TotalPaid  decimal.Decimal   `json:"totalPaid"`
	Remaining  decimal.Decimal   `json:"remaining"`
	Payments   []SnapshotPayment `json:"payments"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Store retains snapshots in Redis for the reprint window.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func key(orderID string) string { return "receipt:" + orderID }

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// Save retains a snapshot for later rendering.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if s == nil || s.R == nil {
		return errors.New("receipt store not configured")
	}
	if snap.OrderID == "" {
		return errors.New("order id is required")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key(snap.OrderID), data, s.ttl()).Err()
}

// Get loads a retained snapshot.
func (s *Store) Get(ctx context.Context, orderID string) (Snapshot, error) {
	if s == nil || s.R == nil {
		return Snapshot{}, errors.New("receipt store not configured")
	}
	data, err := s.R.Get(ctx, key(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
