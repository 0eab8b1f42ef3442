package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "TEST10", NormalizeCode("  test10 "))
	assert.Equal(t, "SUMMER-SALE", NormalizeCode("summer-sale"))
}

func TestCouponDiscountFor(t *testing.T) {
	tests := []struct {
		name       string
		coupon     Coupon
		orderValue int64
		want       int64
	}{
		{
			name: "percentage uncapped",
			coupon: Coupon{
				DiscountType:  DiscountPercentage,
				DiscountValue: decimal.NewFromInt(10),
			},
			orderValue: 200000,
			want:       20000,
		},
		{
			name: "percentage capped by max discount",
			coupon: Coupon{
				DiscountType:      DiscountPercentage,
				DiscountValue:     decimal.NewFromInt(10),
				MaxDiscountAmount: decimal.NewFromInt(15000),
			},
			orderValue: 200000,
			want:       15000,
		},
		{
			name: "percentage under the cap is untouched",
			coupon: Coupon{
				DiscountType:      DiscountPercentage,
				DiscountValue:     decimal.NewFromInt(5),
				MaxDiscountAmount: decimal.NewFromInt(15000),
			},
			orderValue: 200000,
			want:       10000,
		},
		{
			name: "fixed ignores the cap",
			coupon: Coupon{
				DiscountType:      DiscountFixed,
				DiscountValue:     decimal.NewFromInt(50000),
				MaxDiscountAmount: decimal.NewFromInt(15000),
			},
			orderValue: 200000,
			want:       50000,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.coupon.DiscountFor(decimal.NewFromInt(tc.orderValue))
			assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "got %s", got)
		})
	}
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("book %s not found", "b1")))
	assert.Equal(t, KindBadRequest, KindOf(BadRequest("bad")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("no")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidState("nope")))
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
}
