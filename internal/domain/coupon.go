package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage discounts a percentage of the order value,
	// optionally capped by MaxDiscountAmount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed discounts a fixed amount.
	DiscountFixed DiscountType = "fixed"
)

// Coupon is identified by its uppercase code. UsedCount is mutated only by
// the coupon usage ledger.
type Coupon struct {
	Code              string
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	MinOrderValue     decimal.Decimal
	MaxDiscountAmount decimal.Decimal // percentage only; zero means uncapped
	StartDate         time.Time
	EndDate           time.Time
	UsageLimit        int // zero means unlimited
	UsedCount         int
	IsActive          bool
}

// NormalizeCode canonicalises a coupon code the way codes are stored:
// trimmed and uppercased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountFor computes the discount this coupon grants on orderValue.
// Percentage discounts are capped at MaxDiscountAmount when one is set;
// fixed discounts are the discount value as-is.
func (c *Coupon) DiscountFor(orderValue decimal.Decimal) decimal.Decimal {
	if c.DiscountType == DiscountPercentage {
		amount := orderValue.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscountAmount.IsPositive() && amount.GreaterThan(c.MaxDiscountAmount) {
			return c.MaxDiscountAmount
		}
		return amount
	}
	return c.DiscountValue
}
