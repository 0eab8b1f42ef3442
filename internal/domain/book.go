package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is the inventory-bearing catalog entity. Stock is mutated only
// through the inventory ledger and never goes below zero: insufficient
// stock is a hard error, not a clamp.
type Book struct {
	ID            string
	Title         string
	Author        string
	Price         decimal.Decimal
	DiscountPrice decimal.Decimal // zero means no discount
	Image         string
	Stock         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnitPrice is the effective selling price: the discount price when one is
// set, the list price otherwise.
func (b *Book) UnitPrice() decimal.Decimal {
	if b.DiscountPrice.IsPositive() {
		return b.DiscountPrice
	}
	return b.Price
}
