package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// BookStore persists catalog books. The stock column is only ever changed
// through the conditional DecrementStock / IncrementStock updates.
type BookStore struct {
	db *sql.DB
}

// Put inserts or replaces a book row.
func (s *BookStore) Put(ctx context.Context, b *domain.Book) error {
	const q = `
		INSERT INTO books (id, title, author, price, discount_price, image, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			price = excluded.price,
			discount_price = excluded.discount_price,
			image = excluded.image,
			stock = excluded.stock,
			updated_at = excluded.updated_at`

	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Price, b.DiscountPrice, b.Image, b.Stock,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: put book %q: %w", b.ID, err)
	}
	return nil
}

// Get loads one book by ID.
func (s *BookStore) Get(ctx context.Context, id string) (*domain.Book, error) {
	const q = `
		SELECT id, title, author, price, discount_price, image, stock, created_at, updated_at
		FROM   books
		WHERE  id = ?`

	row := s.db.QueryRowContext(ctx, q, id)

	var b domain.Book
	var createdAt, updatedAt string
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.DiscountPrice, &b.Image, &b.Stock, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("book %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get book %q: %w", id, err)
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// DecrementStock atomically subtracts qty from the book's stock, but only
// when enough stock remains. Reports whether the update was applied: a
// false return means a concurrent request won the last units (or the book
// is gone) and the caller must not treat the stock as reserved.
func (s *BookStore) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	const q = `
		UPDATE books
		SET    stock = stock - ?, updated_at = ?
		WHERE  id = ? AND stock >= ?`

	res, err := s.db.ExecContext(ctx, q, qty, formatTime(time.Now()), id, qty)
	if err != nil {
		return false, fmt.Errorf("sqlite: decrement stock of %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: decrement stock of %q: %w", id, err)
	}
	return n > 0, nil
}

// IncrementStock adds qty back to the book's stock. Reports whether a row
// was updated; a missing book yields false with no error, so release flows
// are never blocked by a deleted book.
func (s *BookStore) IncrementStock(ctx context.Context, id string, qty int) (bool, error) {
	const q = `
		UPDATE books
		SET    stock = stock + ?, updated_at = ?
		WHERE  id = ?`

	res, err := s.db.ExecContext(ctx, q, qty, formatTime(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("sqlite: increment stock of %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: increment stock of %q: %w", id, err)
	}
	return n > 0, nil
}
