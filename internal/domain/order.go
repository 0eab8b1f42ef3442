package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a closed enum. Transitions are validated centrally against
// the transition table below, never with ad hoc membership checks.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipping  OrderStatus = "shipping"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusReturned  OrderStatus = "returned"
)

// transitions is the authoritative state machine:
//
//	pending → confirmed → shipping → delivered
//
// with side branches to cancelled (from pending or confirmed) and returned
// (from delivered, or from shipping when a customer refuses delivery).
// cancelled and returned are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusDelivered, StatusReturned},
	StatusDelivered: {StatusReturned},
	StatusCancelled: {},
	StatusReturned:  {},
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits s → to.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// OrderItem is a frozen snapshot of a book at order time. Later edits to the
// book never affect it; there is no live join back to the catalog.
type OrderItem struct {
	BookID   string          `json:"book_id"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
}

// ShippingAddress is captured verbatim from the checkout payload.
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// CouponApplied is a frozen snapshot of the coupon consumed by an order:
// the code and the discount amount computed at creation. The coupon may be
// edited or deleted later without affecting the stored amount.
type CouponApplied struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// PaymentResult is the gateway's payment confirmation payload, stored
// verbatim.
type PaymentResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
}

// Order has immutable identity and frozen pricing: the line items and the
// price breakdown are computed once at creation and never recomputed.
// Mutation happens only through order service transitions.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalPrice      decimal.Decimal
	CouponApplied   *CouponApplied
	Status          OrderStatus
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Actor is the authenticated caller as reported by the auth gateway.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool { return a.Role == "admin" }

// CanAccess reports whether the actor may read or cancel this order:
// the owning user or an admin.
func (o *Order) CanAccess(actor Actor) bool {
	return o.UserID == actor.ID || actor.IsAdmin()
}
