package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/inventory"
	"github.com/Khoi123345/bookstore-platform/internal/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedBook(t *testing.T, st *sqlite.Store, id, title string, stock int) {
	t.Helper()
	require.NoError(t, st.Books.Put(context.Background(), &domain.Book{
		ID:    id,
		Title: title,
		Price: decimal.NewFromInt(100000),
		Stock: stock,
	}))
}

func stockOf(t *testing.T, st *sqlite.Store, id string) int {
	t.Helper()
	b, err := st.Books.Get(context.Background(), id)
	require.NoError(t, err)
	return b.Stock
}

func TestReserveThenReleaseRestoresStock(t *testing.T) {
	st := newStore(t)
	seedBook(t, st, "book-1", "Dune", 10)
	ledger := inventory.NewLedger(st.Books)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, "book-1", 4))
	assert.Equal(t, 6, stockOf(t, st, "book-1"))

	require.NoError(t, ledger.Release(ctx, "book-1", 4))
	assert.Equal(t, 10, stockOf(t, st, "book-1"))
}

func TestReserveUnknownBook(t *testing.T) {
	st := newStore(t)
	ledger := inventory.NewLedger(st.Books)

	err := ledger.Reserve(context.Background(), "missing", 1)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestReserveInsufficientStockNamesTheBook(t *testing.T) {
	st := newStore(t)
	seedBook(t, st, "book-1", "The Left Hand of Darkness", 2)
	ledger := inventory.NewLedger(st.Books)

	err := ledger.Reserve(context.Background(), "book-1", 3)

	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
	assert.ErrorContains(t, err, "The Left Hand of Darkness")
	// Stock must be untouched on failure.
	assert.Equal(t, 2, stockOf(t, st, "book-1"))
}

func TestReleaseDeletedBookIsNoOp(t *testing.T) {
	st := newStore(t)
	ledger := inventory.NewLedger(st.Books)

	assert.NoError(t, ledger.Release(context.Background(), "gone", 5))
}

func TestReserveAllFailsBeforeAnyMutation(t *testing.T) {
	st := newStore(t)
	seedBook(t, st, "book-1", "Book One", 10)
	seedBook(t, st, "book-2", "Book Two", 1)
	ledger := inventory.NewLedger(st.Books)

	err := ledger.ReserveAll(context.Background(), []domain.OrderItem{
		{BookID: "book-1", Quantity: 5},
		{BookID: "book-2", Quantity: 2},
	})

	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
	assert.ErrorContains(t, err, "Book Two")
	// The first item passed validation but nothing may have moved.
	assert.Equal(t, 10, stockOf(t, st, "book-1"))
	assert.Equal(t, 1, stockOf(t, st, "book-2"))
}

func TestReserveAllThenReleaseAllIsSymmetric(t *testing.T) {
	st := newStore(t)
	seedBook(t, st, "book-1", "Book One", 10)
	seedBook(t, st, "book-2", "Book Two", 7)
	ledger := inventory.NewLedger(st.Books)
	ctx := context.Background()

	items := []domain.OrderItem{
		{BookID: "book-1", Quantity: 3},
		{BookID: "book-2", Quantity: 7},
	}
	require.NoError(t, ledger.ReserveAll(ctx, items))
	assert.Equal(t, 7, stockOf(t, st, "book-1"))
	assert.Equal(t, 0, stockOf(t, st, "book-2"))

	require.NoError(t, ledger.ReleaseAll(ctx, items))
	assert.Equal(t, 10, stockOf(t, st, "book-1"))
	assert.Equal(t, 7, stockOf(t, st, "book-2"))
}

func TestStockNeverGoesNegative(t *testing.T) {
	st := newStore(t)
	seedBook(t, st, "book-1", "Scarce", 3)
	ledger := inventory.NewLedger(st.Books)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, "book-1", 3))
	err := ledger.Reserve(ctx, "book-1", 1)

	assert.Error(t, err)
	assert.Equal(t, 0, stockOf(t, st, "book-1"))
}
