package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khoi123345/bookstore-platform/internal/cart"
	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/store/sqlite"
)

func newService(t *testing.T) (*cart.Service, *sqlite.Store) {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return cart.NewService(st.Carts, st.Books), st
}

func seedBook(t *testing.T, st *sqlite.Store, id, title string, price, discountPrice int64, stock int) {
	t.Helper()
	require.NoError(t, st.Books.Put(context.Background(), &domain.Book{
		ID:            id,
		Title:         title,
		Price:         decimal.NewFromInt(price),
		DiscountPrice: decimal.NewFromInt(discountPrice),
		Stock:         stock,
	}))
}

func TestGetOrCreateIsLazy(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	c, err := svc.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems)
	assert.True(t, c.TotalPrice.IsZero())

	// Second access returns the same cart, not a new one.
	again, err := svc.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, c.UserID, again.UserID)
}

func TestAddItemSnapshotsDiscountPrice(t *testing.T) {
	svc, st := newService(t)
	seedBook(t, st, "book-1", "Dune", 150000, 120000, 10)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "user-1", "book-1", 2)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(120000)))
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(240000)))
}

func TestAddItemMergesAndChecksCombinedStock(t *testing.T) {
	svc, st := newService(t)
	seedBook(t, st, "book-1", "Dune", 100000, 0, 5)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "book-1", 3)
	require.NoError(t, err)

	// 3 already in the cart + 3 more exceeds the 5 in stock.
	_, err = svc.AddItem(ctx, "user-1", "book-1", 3)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
	assert.ErrorContains(t, err, "Dune")

	c, err := svc.AddItem(ctx, "user-1", "book-1", 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddItemValidation(t *testing.T) {
	svc, st := newService(t)
	seedBook(t, st, "book-1", "Dune", 100000, 0, 5)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "", 1)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = svc.AddItem(ctx, "user-1", "book-1", 0)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = svc.AddItem(ctx, "user-1", "missing", 1)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUpdateItem(t *testing.T) {
	svc, st := newService(t)
	seedBook(t, st, "book-1", "Dune", 100000, 0, 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "book-1", 1)
	require.NoError(t, err)

	c, err := svc.UpdateItem(ctx, "user-1", "book-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(400000)))

	_, err = svc.UpdateItem(ctx, "user-1", "book-1", 0)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = svc.UpdateItem(ctx, "user-1", "book-1", 11)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	seedBook(t, st, "book-2", "Other", 50000, 0, 5)
	_, err = svc.UpdateItem(ctx, "user-1", "book-2", 1)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, st := newService(t)
	seedBook(t, st, "book-1", "One", 10000, 0, 10)
	seedBook(t, st, "book-2", "Two", 20000, 0, 10)
	seedBook(t, st, "book-3", "Three", 30000, 0, 10)
	ctx := context.Background()

	for _, id := range []string{"book-1", "book-2", "book-3"} {
		_, err := svc.AddItem(ctx, "user-1", id, 1)
		require.NoError(t, err)
	}

	c, err := svc.RemoveItem(ctx, "user-1", "book-2")
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)

	_, err = svc.RemoveItem(ctx, "user-1", "book-2")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	c, err = svc.RemoveItems(ctx, "user-1", []string{"book-1", "book-3"})
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = svc.AddItem(ctx, "user-1", "book-1", 2)
	require.NoError(t, err)
	c, err = svc.Clear(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.TotalPrice.IsZero())
}
