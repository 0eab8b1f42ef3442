package coupon

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// Validator applies the coupon eligibility rules at checkout and through
// the standalone apply-code endpoint.
type Validator struct {
	store Store
	now   func() time.Time
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store, now: time.Now}
}

// Validate checks code against orderValue and returns the coupon together
// with the discount it grants. The rules run in a fixed order: existence,
// validity window, usage limit, minimum order value, active flag. Error
// messages are user-facing; the minimum-order failure states the threshold.
func (v *Validator) Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*domain.Coupon, decimal.Decimal, error) {
	c, err := v.store.Get(ctx, code)
	if err != nil {
		return nil, decimal.Zero, err
	}

	now := v.now()
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return nil, decimal.Zero, domain.BadRequest("coupon %s is expired or not yet active", c.Code)
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return nil, decimal.Zero, domain.BadRequest("coupon %s usage limit reached", c.Code)
	}
	if orderValue.LessThan(c.MinOrderValue) {
		return nil, decimal.Zero, domain.BadRequest("minimum order value of %s not met for coupon %s", c.MinOrderValue.String(), c.Code)
	}
	if !c.IsActive {
		return nil, decimal.Zero, domain.BadRequest("coupon %s is inactive", c.Code)
	}

	return c, c.DiscountFor(orderValue), nil
}
