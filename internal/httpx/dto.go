package httpx

import (
	"github.com/shopspring/decimal"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/order/auditlog"
)

type CreateOrderRequest struct {
	OrderItems      []OrderItemDTO     `json:"order_items"`
	ShippingAddress ShippingAddressDTO `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	CouponCode      string             `json:"coupon_code,omitempty"`

	// Client-computed totals are accepted for backwards compatibility but
	// ignored: the server recomputes the authoritative breakdown.
	ItemsPrice    decimal.Decimal `json:"items_price,omitempty"`
	ShippingPrice decimal.Decimal `json:"shipping_price,omitempty"`
	TotalPrice    decimal.Decimal `json:"total_price,omitempty"`
}

type OrderItemDTO struct {
	BookID   string          `json:"book_id"`
	Title    string          `json:"title,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price,omitempty"`
	Image    string          `json:"image,omitempty"`
}

type ShippingAddressDTO struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type PayOrderRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
}

type CouponAppliedDTO struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type OrderResponse struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	Items           []OrderItemDTO     `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	ItemsPrice      decimal.Decimal    `json:"items_price"`
	ShippingPrice   decimal.Decimal    `json:"shipping_price"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	TotalPrice      decimal.Decimal    `json:"total_price"`
	CouponApplied   *CouponAppliedDTO  `json:"coupon_applied,omitempty"`
	Status          string             `json:"status"`
	IsPaid          bool               `json:"is_paid"`
	PaidAt          string             `json:"paid_at,omitempty"`
	CancelReason    string             `json:"cancel_reason,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
	Total  int             `json:"total"`
}

type OrderEventResponse struct {
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id,omitempty"`
	Note       string `json:"note,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type AddCartItemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type RemoveCartItemsRequest struct {
	BookIDs []string `json:"book_ids"`
}

type CartItemDTO struct {
	BookID   string          `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type CartResponse struct {
	UserID     string          `json:"user_id"`
	Items      []CartItemDTO   `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type ValidateCouponRequest struct {
	Code       string          `json:"code"`
	OrderValue decimal.Decimal `json:"order_value"`
}

type ValidateCouponResponse struct {
	Coupon         CouponDTO       `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type CouponDTO struct {
	Code              string          `json:"code"`
	DiscountType      string          `json:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MinOrderValue     decimal.Decimal `json:"min_order_value"`
	MaxDiscountAmount decimal.Decimal `json:"max_discount_amount"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemDTO{
			BookID:   it.BookID,
			Title:    it.Title,
			Quantity: it.Quantity,
			Price:    it.Price,
			Image:    it.Image,
		}
	}

	resp := OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: ShippingAddressDTO{
			FullName: o.ShippingAddress.FullName,
			Phone:    o.ShippingAddress.Phone,
			Address:  o.ShippingAddress.Address,
			City:     o.ShippingAddress.City,
		},
		PaymentMethod:  o.PaymentMethod,
		ItemsPrice:     o.ItemsPrice,
		ShippingPrice:  o.ShippingPrice,
		DiscountAmount: o.DiscountAmount,
		TotalPrice:     o.TotalPrice,
		Status:         string(o.Status),
		IsPaid:         o.IsPaid,
		CancelReason:   o.CancelReason,
		CreatedAt:      o.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:      o.UpdatedAt.UTC().Format(timeLayout),
	}
	if o.CouponApplied != nil {
		resp.CouponApplied = &CouponAppliedDTO{
			Code:           o.CouponApplied.Code,
			DiscountAmount: o.CouponApplied.DiscountAmount,
		}
	}
	if o.PaidAt != nil {
		resp.PaidAt = o.PaidAt.UTC().Format(timeLayout)
	}
	return resp
}

func mapCartToResponse(c *domain.Cart) CartResponse {
	items := make([]CartItemDTO, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemDTO{BookID: it.BookID, Quantity: it.Quantity, Price: it.Price}
	}
	return CartResponse{
		UserID:     c.UserID,
		Items:      items,
		TotalItems: c.TotalItems,
		TotalPrice: c.TotalPrice,
	}
}

func mapEventToResponse(e auditlog.Event) OrderEventResponse {
	return OrderEventResponse{
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		ActorID:    e.ActorID,
		Note:       e.Note,
		TraceID:    e.TraceID,
		CreatedAt:  e.CreatedAt.UTC().Format(timeLayout),
	}
}
