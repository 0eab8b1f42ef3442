// Package inventory owns book stock. Stock moves only through the Ledger:
// Reserve when an order is confirmed, Release when it is cancelled or
// returned. Stock never goes below zero: insufficient stock is a hard
// error, never a clamp.
package inventory

import (
	"context"
	"log/slog"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// BookStore is the persistence the ledger needs: single-book reads plus the
// two conditional stock updates.
type BookStore interface {
	Get(ctx context.Context, id string) (*domain.Book, error)

	// DecrementStock subtracts qty only while stock >= qty and reports
	// whether the update was applied.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)

	// IncrementStock adds qty back; false without error for a missing book.
	IncrementStock(ctx context.Context, id string, qty int) (bool, error)
}

// Ledger exposes reserve/release keyed by book ID and quantity.
type Ledger struct {
	books BookStore
}

func NewLedger(books BookStore) *Ledger {
	return &Ledger{books: books}
}

// Reserve subtracts qty from the book's stock. It fails NotFound for an
// unknown book and BadRequest naming the book's title when stock is short.
// The title is part of the caller contract, the UI shows it verbatim.
func (l *Ledger) Reserve(ctx context.Context, bookID string, qty int) error {
	book, err := l.books.Get(ctx, bookID)
	if err != nil {
		return err
	}

	ok, err := l.books.DecrementStock(ctx, bookID, qty)
	if err != nil {
		return err
	}
	if !ok {
		// The conditional update lost: another request took the stock
		// between our read and the write, or the book vanished.
		return domain.BadRequest("insufficient stock for %q: %d available, %d requested", book.Title, book.Stock, qty)
	}
	return nil
}

// Release adds qty back to the book's stock. A deleted book is tolerated as
// a no-op so refund flows are never blocked.
func (l *Ledger) Release(ctx context.Context, bookID string, qty int) error {
	ok, err := l.books.IncrementStock(ctx, bookID, qty)
	if err != nil {
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "release skipped, book no longer exists", "book_id", bookID, "quantity", qty)
	}
	return nil
}

// ReserveAll reserves stock for every line item, or for none of them.
//
// It first validates availability for the whole list, so a shortfall on
// item N is reported before any stock has moved. The mutation pass then
// applies per-item conditional decrements; if one fails (a concurrent
// request won the race after our validation pass), the decrements already
// applied are rolled back in reverse order before the error is returned.
func (l *Ledger) ReserveAll(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		book, err := l.books.Get(ctx, item.BookID)
		if err != nil {
			return err
		}
		if book.Stock < item.Quantity {
			return domain.BadRequest("insufficient stock for %q: %d available, %d requested", book.Title, book.Stock, item.Quantity)
		}
	}

	for i, item := range items {
		if err := l.Reserve(ctx, item.BookID, item.Quantity); err != nil {
			l.rollback(ctx, items[:i])
			return err
		}
	}
	return nil
}

// ReleaseAll restores stock for every line item. Items whose book has been
// deleted are skipped; other release failures are logged and do not stop
// the remaining items from being released.
func (l *Ledger) ReleaseAll(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		if err := l.Release(ctx, item.BookID, item.Quantity); err != nil {
			slog.ErrorContext(ctx, "release failed", "book_id", item.BookID, "quantity", item.Quantity, "error", err)
			return err
		}
	}
	return nil
}

func (l *Ledger) rollback(ctx context.Context, reserved []domain.OrderItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		item := reserved[i]
		if err := l.Release(ctx, item.BookID, item.Quantity); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to roll back reservation",
				"book_id", item.BookID, "quantity", item.Quantity, "error", err)
		}
	}
}
