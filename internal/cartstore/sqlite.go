package cartstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	jsoniter "github.com/json-iterator/go"
	"github.com/vk/cartchain/internal/cart"
	"github.com/vk/cartchain/internal/ctxlog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const schema = `CREATE TABLE IF NOT EXISTS carts (
	token      TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// SQLite is a Store that keeps the session cart in a SQLite database, so
// the side effects of one run are visible to the next. Attribute values
// come back with JSON typing: numbers are float64.
type SQLite struct {
	db    *sql.DB
	token string
}

// OpenSQLite opens (or creates) the database at path and makes sure it
// holds a cart for seed.Token. An existing cart is left untouched.
func OpenSQLite(ctx context.Context, path string, seed cart.Cart) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart database %s: %w", path, err)
	}
	// One connection serialises the read-modify-write transactions.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create carts table: %w", err)
	}

	payload, err := json.Marshal(seed)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to encode seed cart: %w", err)
	}
	res, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO carts (token, payload) VALUES (?, ?)`, seed.Token, string(payload))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed cart: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		ctxlog.FromContext(ctx).Debug("Seeded cart database.", "path", path, "token", seed.Token)
	}

	return &SQLite{db: db, token: seed.Token}, nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Fetch returns the stored session cart.
func (s *SQLite) Fetch(ctx context.Context) (cart.Cart, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM carts WHERE token = ?`, s.token).Scan(&payload)
	if err != nil {
		return cart.Cart{}, s.queryError(err)
	}
	return decodeCart(payload)
}

// AddItem appends item to the stored session cart.
func (s *SQLite) AddItem(ctx context.Context, item cart.LineItem) (cart.Cart, error) {
	if err := validateItem(item); err != nil {
		return cart.Cart{}, err
	}
	updated, err := s.update(ctx, func(c cart.Cart) cart.Cart {
		if item.ID == 0 {
			item.ID = c.NextItemID()
		}
		return c.WithItem(item)
	})
	if err != nil {
		return cart.Cart{}, err
	}
	ctxlog.FromContext(ctx).Debug("Cart line stored.", "variant_id", item.VariantID, "total", updated.TotalPrice)
	return updated, nil
}

// UpdateAttributes merges attrs into the stored session cart's attributes.
func (s *SQLite) UpdateAttributes(ctx context.Context, attrs map[string]any) (cart.Cart, error) {
	updated, err := s.update(ctx, func(c cart.Cart) cart.Cart {
		return c.WithAttributes(attrs)
	})
	if err != nil {
		return cart.Cart{}, err
	}
	ctxlog.FromContext(ctx).Debug("Cart attributes stored.", "keys", len(attrs))
	return updated, nil
}

// update applies fn to the stored cart inside a transaction and returns the
// cart as it was written.
func (s *SQLite) update(ctx context.Context, fn func(cart.Cart) cart.Cart) (cart.Cart, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cart.Cart{}, fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer tx.Rollback()

	var payload string
	if err := tx.QueryRowContext(ctx, `SELECT payload FROM carts WHERE token = ?`, s.token).Scan(&payload); err != nil {
		return cart.Cart{}, s.queryError(err)
	}
	current, err := decodeCart(payload)
	if err != nil {
		return cart.Cart{}, err
	}

	next := fn(current)
	data, err := json.Marshal(next)
	if err != nil {
		return cart.Cart{}, fmt.Errorf("failed to encode cart: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE carts SET payload = ?, updated_at = CURRENT_TIMESTAMP WHERE token = ?`, string(data), s.token); err != nil {
		return cart.Cart{}, fmt.Errorf("failed to store cart: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return cart.Cart{}, fmt.Errorf("failed to commit cart transaction: %w", err)
	}
	return decodeCart(string(data))
}

func (s *SQLite) queryError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("cart '%s' not found", s.token)
	}
	return fmt.Errorf("failed to load cart: %w", err)
}

func decodeCart(payload string) (cart.Cart, error) {
	var c cart.Cart
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return cart.Cart{}, fmt.Errorf("failed to decode stored cart: %w", err)
	}
	if c.Attributes == nil {
		c.Attributes = map[string]any{}
	}
	return c, nil
}
