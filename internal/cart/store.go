package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Store keeps cart sessions as JSON snapshots in Redis. A cart is ephemeral
// terminal state: it expires with the session TTL and is deleted outright on
// successful checkout.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func key(id string) string { return "cart:" + id }

// Create persists a fresh cart for the given register and optional customer.
func (s *Store) Create(ctx context.Context, registerID, entityID string) (*Cart, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("cart store not configured")
	}
	c := New(registerID)
	c.EntityID = entityID
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads a cart snapshot. ErrNotFound is returned for expired or unknown
// sessions.
func (s *Store) Get(ctx context.Context, id string) (*Cart, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("cart store not configured")
	}
	data, err := s.R.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save stores the snapshot and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	if c == nil || c.ID == "" {
		return errors.New("cart id is required")
	}
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key(c.ID), data, s.ttl()).Err()
}

// Delete drops the session. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	return s.R.Del(ctx, key(id)).Err()
}

// Mutate loads a cart, applies fn, and saves the result when fn succeeds.
func (s *Store) Mutate(ctx context.Context, id string, fn func(*Cart) error) (*Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
