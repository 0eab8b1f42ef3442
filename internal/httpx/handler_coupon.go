package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/Khoi123345/bookstore-platform/internal/coupon"
)

// CouponHandler exposes the standalone apply-code validation endpoint.
type CouponHandler struct {
	validator *coupon.Validator
}

func NewCouponHandler(validator *coupon.Validator) *CouponHandler {
	return &CouponHandler{validator: validator}
}

// ValidateCoupon checks a code against an order value and returns the
// coupon plus the discount it would grant.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	var req ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "coupon code is required")
		return
	}

	c, amount, err := h.validator.Validate(r.Context(), req.Code, req.OrderValue)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateCouponResponse{
		Coupon: CouponDTO{
			Code:              c.Code,
			DiscountType:      string(c.DiscountType),
			DiscountValue:     c.DiscountValue,
			MinOrderValue:     c.MinOrderValue,
			MaxDiscountAmount: c.MaxDiscountAmount,
		},
		DiscountAmount: amount,
	})
}
