package cartstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/ctxlog"
)

// InMemory is a Store holding a single session cart in memory. It can
// simulate network latency to behave like the remote cart API it stands in
// for.
type InMemory struct {
	mu      sync.Mutex
	current cart.Cart
	latency time.Duration
	calls   int
}

// Option configures an InMemory store.
type Option func(*InMemory)

// WithLatency delays every call by d, or until the caller's context is done.
func WithLatency(d time.Duration) Option {
	return func(s *InMemory) {
		s.latency = d
	}
}

// NewInMemory creates a store whose session cart starts as a copy of seed.
func NewInMemory(seed cart.Cart, opts ...Option) *InMemory {
	s := &InMemory{current: seed.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset replaces the session cart with a copy of seed.
func (s *InMemory) Reset(seed cart.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = seed.Clone()
}

// Calls returns how many API calls the store has served.
func (s *InMemory) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Fetch returns a copy of the session cart.
func (s *InMemory) Fetch(ctx context.Context) (cart.Cart, error) {
	if err := s.wait(ctx); err != nil {
		return cart.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.current.Clone(), nil
}

// AddItem appends item to the session cart.
func (s *InMemory) AddItem(ctx context.Context, item cart.LineItem) (cart.Cart, error) {
	if err := validateItem(item); err != nil {
		return cart.Cart{}, err
	}
	if err := s.wait(ctx); err != nil {
		return cart.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if item.ID == 0 {
		item.ID = s.current.NextItemID()
	}
	s.current = s.current.WithItem(item)
	ctxlog.FromContext(ctx).Debug("Cart line added.", "variant_id", item.VariantID, "item_id", item.ID, "total", s.current.TotalPrice)
	return s.current.Clone(), nil
}

// UpdateAttributes merges attrs into the session cart's attributes.
func (s *InMemory) UpdateAttributes(ctx context.Context, attrs map[string]any) (cart.Cart, error) {
	if err := s.wait(ctx); err != nil {
		return cart.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.current = s.current.WithAttributes(attrs)
	ctxlog.FromContext(ctx).Debug("Cart attributes updated.", "keys", len(attrs))
	return s.current.Clone(), nil
}

// wait simulates the round trip to the remote API.
func (s *InMemory) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("cart request cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
