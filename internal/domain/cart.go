package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipping fee schedule (VND): orders at or below the threshold pay a flat
// fee, larger orders ship free.
var (
	FreeShippingThreshold = decimal.NewFromInt(200000)
	FlatShippingFee       = decimal.NewFromInt(30000)
)

// CartItem is one line in a cart: a book reference, a quantity and the unit
// price snapshotted when the item was added.
type CartItem struct {
	BookID   string          `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Cart belongs to exactly one user. TotalItems and TotalPrice are derived:
// they are recomputed after every mutation and never set independently.
type Cart struct {
	UserID     string
	Items      []CartItem
	TotalItems int
	TotalPrice decimal.Decimal
	UpdatedAt  time.Time
}

// NewCart returns an empty cart for the user.
func NewCart(userID string) *Cart {
	return &Cart{
		UserID:     userID,
		Items:      []CartItem{},
		TotalPrice: decimal.Zero,
	}
}

// Find returns a pointer to the line item for bookID, or nil.
func (c *Cart) Find(bookID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return &c.Items[i]
		}
	}
	return nil
}

// Add merges quantity into an existing line for the same book, or appends a
// new line with the given price snapshot. Duplicate book references are
// never kept as separate lines.
func (c *Cart) Add(bookID string, quantity int, price decimal.Decimal) {
	if item := c.Find(bookID); item != nil {
		item.Quantity += quantity
		c.Recompute()
		return
	}
	c.Items = append(c.Items, CartItem{BookID: bookID, Quantity: quantity, Price: price})
	c.Recompute()
}

// Remove drops the line item for bookID. Reports whether a line was removed.
func (c *Cart) Remove(bookID string) bool {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recompute()
			return true
		}
	}
	return false
}

// RemoveMany drops every line whose book appears in bookIDs.
func (c *Cart) RemoveMany(bookIDs []string) {
	drop := make(map[string]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		drop[id] = struct{}{}
	}
	kept := c.Items[:0]
	for _, item := range c.Items {
		if _, ok := drop[item.BookID]; !ok {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.Recompute()
}

// Clear empties the cart and zeroes the totals. The cart itself survives.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recompute()
}

// Recompute rebuilds the derived totals from the line items. It is pure over
// the items, so running it twice on an unchanged cart is a no-op.
func (c *Cart) Recompute() {
	count := 0
	sum := decimal.Zero
	for _, item := range c.Items {
		count += item.Quantity
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalItems = count
	c.TotalPrice = sum
}

// ItemsPrice is the sum of line subtotals.
func (c *Cart) ItemsPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// ShippingPrice returns the flat shipping fee for an items subtotal:
// free above the threshold, the flat fee otherwise.
func ShippingPrice(itemsPrice decimal.Decimal) decimal.Decimal {
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}
