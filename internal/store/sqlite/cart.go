package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// CartStore persists one cart row per user, line items as a JSON column.
// A cart is always read and written as a whole document, which keeps every
// cart mutation a single atomic row write.
type CartStore struct {
	db *sql.DB
}

// Get loads the cart for userID. Missing carts surface as NotFound; the
// cart service turns that into lazy creation.
func (s *CartStore) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
		SELECT user_id, items, total_items, total_price, updated_at
		FROM   carts
		WHERE  user_id = ?`

	row := s.db.QueryRowContext(ctx, q, userID)

	var c domain.Cart
	var items, updatedAt string
	err := row.Scan(&c.UserID, &items, &c.TotalItems, &c.TotalPrice, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("cart for user %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get cart for %q: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return nil, fmt.Errorf("sqlite: decode cart items for %q: %w", userID, err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save upserts the whole cart document.
func (s *CartStore) Save(ctx context.Context, c *domain.Cart) error {
	const q = `
		INSERT INTO carts (user_id, items, total_items, total_price, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			items = excluded.items,
			total_items = excluded.total_items,
			total_price = excluded.total_price,
			updated_at = excluded.updated_at`

	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("sqlite: encode cart items for %q: %w", c.UserID, err)
	}

	c.UpdatedAt = time.Now()
	_, err = s.db.ExecContext(ctx, q, c.UserID, string(items), c.TotalItems, c.TotalPrice, formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: save cart for %q: %w", c.UserID, err)
	}
	return nil
}
