package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartAddMergesDuplicateBooks(t *testing.T) {
	c := NewCart("user-1")
	c.Add("book-1", 2, decimal.NewFromInt(50000))
	c.Add("book-1", 3, decimal.NewFromInt(50000))

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, c.TotalItems)
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(250000)))
}

func TestCartRecomputeIsIdempotent(t *testing.T) {
	c := NewCart("user-1")
	c.Add("book-1", 2, decimal.NewFromInt(120000))
	c.Add("book-2", 1, decimal.NewFromInt(80000))

	items, price := c.TotalItems, c.TotalPrice
	c.Recompute()
	c.Recompute()

	assert.Equal(t, items, c.TotalItems)
	assert.True(t, price.Equal(c.TotalPrice))
}

func TestCartRemoveMany(t *testing.T) {
	c := NewCart("user-1")
	c.Add("book-1", 1, decimal.NewFromInt(10000))
	c.Add("book-2", 2, decimal.NewFromInt(20000))
	c.Add("book-3", 3, decimal.NewFromInt(30000))

	c.RemoveMany([]string{"book-1", "book-3", "book-does-not-exist"})

	assert.Len(t, c.Items, 1)
	assert.Equal(t, "book-2", c.Items[0].BookID)
	assert.Equal(t, 2, c.TotalItems)
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(40000)))
}

func TestCartClearZeroesTotals(t *testing.T) {
	c := NewCart("user-1")
	c.Add("book-1", 4, decimal.NewFromInt(99000))

	c.Clear()

	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems)
	assert.True(t, c.TotalPrice.IsZero())
}

func TestShippingPrice(t *testing.T) {
	tests := []struct {
		name       string
		itemsPrice int64
		want       int64
	}{
		{"below threshold pays flat fee", 150000, 30000},
		{"exactly at threshold pays flat fee", 200000, 30000},
		{"above threshold ships free", 200001, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ShippingPrice(decimal.NewFromInt(tc.itemsPrice))
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "got %s", got)
		})
	}
}

func TestBookUnitPrice(t *testing.T) {
	full := &Book{Price: decimal.NewFromInt(100000)}
	assert.True(t, full.UnitPrice().Equal(decimal.NewFromInt(100000)))

	discounted := &Book{Price: decimal.NewFromInt(100000), DiscountPrice: decimal.NewFromInt(75000)}
	assert.True(t, discounted.UnitPrice().Equal(decimal.NewFromInt(75000)))
}
