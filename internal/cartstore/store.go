// Package cartstore defines the storefront cart backend that chain steps talk
// to, along with an in-memory implementation used by the CLI and the tests and
// a SQLite implementation that keeps the session cart across runs.
//
// # Why a Store Exists
//
// Steps never mutate a cart on their own: they ask the backend to add a line
// or to update attributes and continue with the cart the backend returns.
// This keeps the external side effects of a chain in one place. The executor
// does not roll them back when a chain stops or fails, and neither does the
// store.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. Every returned cart is a
// private copy the caller may keep or modify freely.
package cartstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/cartchain/internal/cart"
)

// ErrInvalidItem is returned when a line item cannot be added to a cart.
var ErrInvalidItem = errors.New("invalid line item")

// Store is the interface of the storefront cart API.
type Store interface {
	// Fetch returns the current session cart.
	Fetch(ctx context.Context) (cart.Cart, error)
	// AddItem adds a line to the session cart and returns the updated cart.
	// A zero item ID is replaced with the next free one.
	AddItem(ctx context.Context, item cart.LineItem) (cart.Cart, error)
	// UpdateAttributes merges attrs into the session cart's attributes and
	// returns the updated cart.
	UpdateAttributes(ctx context.Context, attrs map[string]any) (cart.Cart, error)
}

// validateItem rejects lines no backend would accept.
func validateItem(item cart.LineItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidItem, item.Quantity)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price must not be negative, got %d", ErrInvalidItem, item.Price)
	}
	return nil
}
