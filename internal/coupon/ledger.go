// Package coupon owns coupon usage accounting and checkout-time validation.
package coupon

import (
	"context"
	"log/slog"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// Store is the persistence the ledger and validator need.
type Store interface {
	Get(ctx context.Context, code string) (*domain.Coupon, error)

	// IncrementUsage bumps used_count while the usage limit allows it and
	// reports whether the update was applied.
	IncrementUsage(ctx context.Context, code string) (bool, error)

	// DecrementUsage lowers used_count, flooring at zero. A missing coupon
	// is a no-op.
	DecrementUsage(ctx context.Context, code string) error
}

// Ledger owns used_count: incremented once when an order consuming the
// coupon is placed, decremented once when that order is cancelled or
// returned. Callers guarantee at-most-once invocation per transition.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Increment records one use of the coupon. A code that no longer exists is
// tolerated as a no-op: the order may reference a coupon deleted since, and
// that must not fail the order. An existing coupon whose limit is exhausted
// is rejected. Validation happens before Increment, so hitting this means
// a concurrent order consumed the last use in between.
func (l *Ledger) Increment(ctx context.Context, code string) error {
	ok, err := l.store.IncrementUsage(ctx, code)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := l.store.Get(ctx, code); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			slog.WarnContext(ctx, "usage increment skipped, coupon no longer exists", "code", code)
			return nil
		}
		return err
	}
	return domain.BadRequest("coupon %s usage limit reached", domain.NormalizeCode(code))
}

// Decrement releases one use of the coupon. Never goes negative; a missing
// coupon is a no-op.
func (l *Ledger) Decrement(ctx context.Context, code string) error {
	return l.store.DecrementUsage(ctx, code)
}
