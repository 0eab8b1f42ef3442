package order

import (
	"context"
	"log/slog"

	"github.com/Khoi123345/bookstore-platform/internal/coupon"
	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/inventory"
)

// step is one unit of work inside an order operation. Each step has a
// compensating action to undo its effects, so a failure partway through a
// transition never leaves partial stock or coupon mutations behind.
type step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// runSteps executes steps sequentially. If one fails, the steps already
// executed are compensated in reverse order (LIFO) before the error is
// returned.
func runSteps(ctx context.Context, steps []step) error {
	var done []step
	for _, st := range steps {
		if err := st.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "step failed, rolling back", "step", st.Name(), "error", err)
			rollbackSteps(ctx, done)
			return err
		}
		done = append(done, st)
	}
	return nil
}

func rollbackSteps(ctx context.Context, done []step) {
	for i := len(done) - 1; i >= 0; i-- {
		st := done[i]
		if err := st.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step", "step", st.Name(), "error", err)
		}
	}
}

// --- reserveStockStep ---

type reserveStockStep struct {
	ledger *inventory.Ledger
	items  []domain.OrderItem
}

func (s *reserveStockStep) Name() string { return "Reserve_Stock_Step" }

func (s *reserveStockStep) Execute(ctx context.Context) error {
	return s.ledger.ReserveAll(ctx, s.items)
}

func (s *reserveStockStep) Compensate(ctx context.Context) error {
	return s.ledger.ReleaseAll(ctx, s.items)
}

// --- releaseStockStep ---

type releaseStockStep struct {
	ledger *inventory.Ledger
	items  []domain.OrderItem
}

func (s *releaseStockStep) Name() string { return "Release_Stock_Step" }

func (s *releaseStockStep) Execute(ctx context.Context) error {
	return s.ledger.ReleaseAll(ctx, s.items)
}

func (s *releaseStockStep) Compensate(ctx context.Context) error {
	return s.ledger.ReserveAll(ctx, s.items)
}

// --- couponIncrementStep ---

type couponIncrementStep struct {
	ledger *coupon.Ledger
	code   string
}

func (s *couponIncrementStep) Name() string { return "Coupon_Increment_Step" }

func (s *couponIncrementStep) Execute(ctx context.Context) error {
	return s.ledger.Increment(ctx, s.code)
}

func (s *couponIncrementStep) Compensate(ctx context.Context) error {
	return s.ledger.Decrement(ctx, s.code)
}

// --- couponDecrementStep ---

type couponDecrementStep struct {
	ledger *coupon.Ledger
	code   string
}

func (s *couponDecrementStep) Name() string { return "Coupon_Decrement_Step" }

func (s *couponDecrementStep) Execute(ctx context.Context) error {
	return s.ledger.Decrement(ctx, s.code)
}

func (s *couponDecrementStep) Compensate(ctx context.Context) error {
	return s.ledger.Increment(ctx, s.code)
}

// --- persistOrderStep ---

type persistOrderStep struct {
	orders Store
	order  *domain.Order
}

func (s *persistOrderStep) Name() string { return "Persist_Order_Step" }

func (s *persistOrderStep) Execute(ctx context.Context) error {
	return s.orders.Create(ctx, s.order)
}

func (s *persistOrderStep) Compensate(ctx context.Context) error {
	// Last step of order creation; nothing to undo if it never ran.
	return nil
}

// --- setStatusStep ---

type setStatusStep struct {
	orders Store
	order  *domain.Order
	to     domain.OrderStatus
	prev   domain.OrderStatus
}

func (s *setStatusStep) Name() string { return "Set_Status_Step" }

func (s *setStatusStep) Execute(ctx context.Context) error {
	s.prev = s.order.Status
	s.order.Status = s.to
	return s.orders.Update(ctx, s.order)
}

func (s *setStatusStep) Compensate(ctx context.Context) error {
	s.order.Status = s.prev
	return s.orders.Update(ctx, s.order)
}
