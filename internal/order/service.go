// Package order implements the order aggregate, its status state machine
// and the service that coordinates cart, inventory and coupon usage as a
// unit of work.
package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Khoi123345/bookstore-platform/internal/cart"
	"github.com/Khoi123345/bookstore-platform/internal/coupon"
	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/inventory"
	"github.com/Khoi123345/bookstore-platform/internal/order/auditlog"
	"github.com/Khoi123345/bookstore-platform/internal/pkg/cache"
)

// idempotencyTTL is how long a checkout idempotency key keeps mapping to
// the order it created.
const idempotencyTTL = 24 * time.Hour

// Store is the order persistence port.
type Store interface {
	Create(ctx context.Context, o *domain.Order) error
	Update(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error)
}

// BookReader is the catalog read access order creation needs for price and
// title snapshots.
type BookReader interface {
	Get(ctx context.Context, id string) (*domain.Book, error)
}

// Service is the core's public contract: create order, change status,
// cancel, return, mark paid. Each operation runs its side effects through
// compensating steps so stock and coupon usage stay consistent even when a
// later write fails.
//
// events and idem are nil-safe: transitions are not audit-logged and
// checkout is not idempotent when they are not configured.
type Service struct {
	orders    Store
	books     BookReader
	stock     *inventory.Ledger
	coupons   *coupon.Ledger
	validator *coupon.Validator
	carts     *cart.Service
	events    auditlog.Repository
	idem      cache.Cache
}

func NewService(
	orders Store,
	books BookReader,
	stock *inventory.Ledger,
	coupons *coupon.Ledger,
	validator *coupon.Validator,
	carts *cart.Service,
	events auditlog.Repository,
	idem cache.Cache,
) *Service {
	return &Service{
		orders:    orders,
		books:     books,
		stock:     stock,
		coupons:   coupons,
		validator: validator,
		carts:     carts,
		events:    events,
		idem:      idem,
	}
}

// CreateItem is one requested line of a checkout payload.
type CreateItem struct {
	BookID   string
	Quantity int
}

// CreateInput is the checkout payload. Prices are not part of it: the
// breakdown is computed server-side from live book data and the coupon.
type CreateInput struct {
	Items           []CreateItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	CouponCode      string
	IdempotencyKey  string
}

// Create places a new order for the actor: status pending, frozen line-item
// snapshots and price breakdown, coupon usage incremented when a code was
// applied. No stock moves until the order is confirmed.
//
// Every line's availability is validated before anything is written, so a
// shortfall on one item leaves no trace of the attempt.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Order, error) {
	if existing, err := s.replayIdempotent(ctx, actor, in.IdempotencyKey); existing != nil || err != nil {
		return existing, err
	}

	if len(in.Items) == 0 {
		return nil, domain.BadRequest("order must contain at least one item")
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	itemsPrice := decimal.Zero
	for _, it := range in.Items {
		if it.BookID == "" || it.Quantity <= 0 {
			return nil, domain.BadRequest("each order item needs a book id and a positive quantity")
		}
		book, err := s.books.Get(ctx, it.BookID)
		if err != nil {
			return nil, err
		}
		if it.Quantity > book.Stock {
			return nil, domain.BadRequest("insufficient stock for %q: %d available, %d requested", book.Title, book.Stock, it.Quantity)
		}
		price := book.UnitPrice()
		items = append(items, domain.OrderItem{
			BookID:   book.ID,
			Title:    book.Title,
			Quantity: it.Quantity,
			Price:    price,
			Image:    book.Image,
		})
		itemsPrice = itemsPrice.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	shippingPrice := domain.ShippingPrice(itemsPrice)
	discount := decimal.Zero
	var applied *domain.CouponApplied
	if in.CouponCode != "" {
		c, amount, err := s.validator.Validate(ctx, in.CouponCode, itemsPrice)
		if err != nil {
			return nil, err
		}
		discount = amount
		applied = &domain.CouponApplied{Code: c.Code, DiscountAmount: amount}
	}

	now := time.Now()
	o := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		DiscountAmount:  discount,
		TotalPrice:      itemsPrice.Add(shippingPrice).Sub(discount),
		CouponApplied:   applied,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var steps []step
	if applied != nil {
		steps = append(steps, &couponIncrementStep{ledger: s.coupons, code: applied.Code})
	}
	steps = append(steps, &persistOrderStep{orders: s.orders, order: o})
	if err := runSteps(ctx, steps); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, o.ID, "", domain.StatusPending, actor.ID, "")
	s.clearCart(ctx, actor.ID)
	s.recordIdempotent(ctx, actor, in.IdempotencyKey, o.ID)

	slog.InfoContext(ctx, "order created",
		"order_id", o.ID, "user_id", o.UserID, "total_price", o.TotalPrice.String())
	return o, nil
}

// Get returns one order. Only the owning user or an admin may read it.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanAccess(actor) {
		return nil, domain.Forbidden("order %s does not belong to you", id)
	}
	return o, nil
}

// ListMine returns the actor's orders, newest first.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, actor.ID)
}

// List returns one admin page of all orders plus the total count.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.orders.List(ctx, page, pageSize)
}

// UpdateStatus drives the state machine to the requested status and applies
// the transition's side effects: reserving stock on confirm, releasing it
// (plus releasing coupon usage) on cancel and return.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id string, to domain.OrderStatus) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, o, to, actor, ""); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel cancels a pending or confirmed order. Stock is released only when
// it had been reserved (confirmed orders); a coupon use is given back
// either way. Only the owning user or an admin may cancel.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanAccess(actor) {
		return nil, domain.Forbidden("order %s does not belong to you", id)
	}
	switch o.Status {
	case domain.StatusDelivered, domain.StatusCancelled, domain.StatusReturned:
		return nil, domain.InvalidState("cannot cancel an order that is delivered, cancelled, or already returned")
	}

	o.CancelReason = reason
	if err := s.transition(ctx, o, domain.StatusCancelled, actor, reason); err != nil {
		return nil, err
	}
	return o, nil
}

// Return marks a delivered order as returned (or a shipping one, the admin
// "customer refused delivery" action), releasing its stock and coupon use.
func (s *Service) Return(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanAccess(actor) {
		return nil, domain.Forbidden("order %s does not belong to you", id)
	}
	switch o.Status {
	case domain.StatusCancelled, domain.StatusReturned:
		return nil, domain.InvalidState("order already cancelled or returned")
	}

	if err := s.transition(ctx, o, domain.StatusReturned, actor, "customer return"); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid records the gateway's payment result verbatim. Payment is
// independent of the status machine: a pending order can be paid before it
// is confirmed.
func (s *Service) MarkPaid(ctx context.Context, id string, result domain.PaymentResult) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &result
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order paid", "order_id", o.ID, "payment_id", result.ID)
	return o, nil
}

// Events returns the transition history of one order, oldest first.
func (s *Service) Events(ctx context.Context, actor domain.Actor, id string) ([]auditlog.Event, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanAccess(actor) {
		return nil, domain.Forbidden("order %s does not belong to you", id)
	}
	if s.events == nil {
		return []auditlog.Event{}, nil
	}
	return s.events.ListByOrder(ctx, o.ID)
}

// transition validates the move against the state machine and runs the
// side-effect steps followed by the status write. A failure in any step
// compensates the ones already applied, so the order, its stock and its
// coupon usage move together or not at all.
func (s *Service) transition(ctx context.Context, o *domain.Order, to domain.OrderStatus, actor domain.Actor, note string) error {
	if !to.Valid() {
		return domain.BadRequest("unknown order status %q", string(to))
	}
	if !o.Status.CanTransitionTo(to) {
		return domain.InvalidState("cannot change order status from %s to %s", o.Status, to)
	}

	from := o.Status
	steps := s.sideEffects(o, from, to)
	steps = append(steps, &setStatusStep{orders: s.orders, order: o, to: to})
	if err := runSteps(ctx, steps); err != nil {
		return err
	}

	s.appendEvent(ctx, o.ID, from, to, actor.ID, note)
	slog.InfoContext(ctx, "order status changed", "order_id", o.ID, "from", from, "to", to)
	return nil
}

// sideEffects builds the ledger steps a transition drives:
//
//	pending   → confirmed: reserve stock for every line item
//	confirmed → cancelled: release stock, give back the coupon use
//	pending   → cancelled: no stock was reserved; coupon use only
//	→ returned:            release stock, give back the coupon use
func (s *Service) sideEffects(o *domain.Order, from, to domain.OrderStatus) []step {
	var steps []step
	switch to {
	case domain.StatusConfirmed:
		steps = append(steps, &reserveStockStep{ledger: s.stock, items: o.Items})
	case domain.StatusCancelled:
		if from == domain.StatusConfirmed {
			steps = append(steps, &releaseStockStep{ledger: s.stock, items: o.Items})
		}
		if o.CouponApplied != nil {
			steps = append(steps, &couponDecrementStep{ledger: s.coupons, code: o.CouponApplied.Code})
		}
	case domain.StatusReturned:
		steps = append(steps, &releaseStockStep{ledger: s.stock, items: o.Items})
		if o.CouponApplied != nil {
			steps = append(steps, &couponDecrementStep{ledger: s.coupons, code: o.CouponApplied.Code})
		}
	}
	return steps
}

func (s *Service) appendEvent(ctx context.Context, orderID string, from, to domain.OrderStatus, actorID, note string) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, auditlog.NewEvent(ctx, orderID, from, to, actorID, note)); err != nil {
		slog.ErrorContext(ctx, "failed to append order event", "order_id", orderID, "error", err)
	}
}

func (s *Service) clearCart(ctx context.Context, userID string) {
	if s.carts == nil {
		return
	}
	if _, err := s.carts.Clear(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "failed to clear cart after checkout", "user_id", userID, "error", err)
	}
}

// idempotencyCacheKey scopes the client-chosen key to the actor. Two users
// sending the same key must never share an entry.
func (s *Service) idempotencyCacheKey(actor domain.Actor, key string) string {
	return s.idem.GenerateKey("checkout", actor.ID+":"+key)
}

// replayIdempotent returns the order a previous request by the same actor
// with the same idempotency key already created, if any. An entry pointing
// at another user's order is treated as a miss, not served.
func (s *Service) replayIdempotent(ctx context.Context, actor domain.Actor, key string) (*domain.Order, error) {
	if s.idem == nil || key == "" {
		return nil, nil
	}
	orderID, err := s.idem.Get(ctx, s.idempotencyCacheKey(actor, key))
	if err != nil {
		slog.ErrorContext(ctx, "idempotency lookup failed", "error", err)
		return nil, nil
	}
	if orderID == "" {
		return nil, nil
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.ID {
		slog.WarnContext(ctx, "idempotency entry points at another user's order, ignoring",
			"order_id", orderID, "user_id", actor.ID)
		return nil, nil
	}
	slog.InfoContext(ctx, "replayed idempotent checkout", "order_id", orderID)
	return o, nil
}

func (s *Service) recordIdempotent(ctx context.Context, actor domain.Actor, key, orderID string) {
	if s.idem == nil || key == "" {
		return
	}
	if err := s.idem.Set(ctx, s.idempotencyCacheKey(actor, key), orderID, idempotencyTTL); err != nil {
		slog.ErrorContext(ctx, "failed to record idempotency key", "order_id", orderID, "error", err)
	}
}
