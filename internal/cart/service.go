// Package cart implements the per-user cart aggregate: line item mutations
// with advisory stock checks and derived totals recomputed on every change.
package cart

import (
	"context"
	"log/slog"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// Store persists carts as whole documents.
type Store interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, c *domain.Cart) error
}

// BookReader is the catalog read access the cart needs for price snapshots
// and live stock checks.
type BookReader interface {
	Get(ctx context.Context, id string) (*domain.Book, error)
}

// Service owns all cart mutations. Stock checks here use live stock and
// are advisory only: nothing is reserved until the order is confirmed.
type Service struct {
	carts Store
	books BookReader
}

func NewService(carts Store, books BookReader) *Service {
	return &Service{carts: carts, books: books}
}

// GetOrCreate returns the user's cart, creating an empty one on first
// access.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if domain.KindOf(err) == domain.KindNotFound {
		c = domain.NewCart(userID)
		if err := s.carts.Save(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem puts quantity of the book into the cart, merging with an existing
// line for the same book. The price snapshot is taken at add time. The
// combined quantity must not exceed the book's live stock.
func (s *Service) AddItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	if bookID == "" || quantity <= 0 {
		return nil, domain.BadRequest("book id and a positive quantity are required")
	}

	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	if item := c.Find(bookID); item != nil {
		requested += item.Quantity
	}
	if requested > book.Stock {
		return nil, domain.BadRequest("insufficient stock for %q: %d available, %d requested", book.Title, book.Stock, requested)
	}

	c.Add(bookID, quantity, book.UnitPrice())
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "cart item added", "user_id", userID, "book_id", bookID, "quantity", quantity)
	return c, nil
}

// UpdateItem sets the quantity of an existing line item.
func (s *Service) UpdateItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.BadRequest("quantity must be positive")
	}

	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if quantity > book.Stock {
		return nil, domain.BadRequest("insufficient stock for %q: %d available, %d requested", book.Title, book.Stock, quantity)
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := c.Find(bookID)
	if item == nil {
		return nil, domain.NotFound("book %s is not in the cart", bookID)
	}
	item.Quantity = quantity
	c.Recompute()

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem drops one line item from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, bookID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !c.Remove(bookID) {
		return nil, domain.NotFound("book %s is not in the cart", bookID)
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItems drops every line item whose book is listed in bookIDs.
func (s *Service) RemoveItems(ctx context.Context, userID string, bookIDs []string) (*domain.Cart, error) {
	if len(bookIDs) == 0 {
		return nil, domain.BadRequest("book ids are required")
	}
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.RemoveMany(bookIDs)
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the cart, keeping the cart row itself.
func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Clear()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
