package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// CouponStore persists coupons. used_count only moves through the
// conditional IncrementUsage / DecrementUsage updates.
type CouponStore struct {
	db *sql.DB
}

// Put inserts or replaces a coupon. The code is normalised before storage.
func (s *CouponStore) Put(ctx context.Context, c *domain.Coupon) error {
	const q = `
		INSERT INTO coupons
			(code, discount_type, discount_value, min_order_value, max_discount_amount,
			 start_date, end_date, usage_limit, used_count, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			discount_type = excluded.discount_type,
			discount_value = excluded.discount_value,
			min_order_value = excluded.min_order_value,
			max_discount_amount = excluded.max_discount_amount,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			usage_limit = excluded.usage_limit,
			used_count = excluded.used_count,
			is_active = excluded.is_active`

	c.Code = domain.NormalizeCode(c.Code)
	_, err := s.db.ExecContext(ctx, q,
		c.Code, string(c.DiscountType), c.DiscountValue, c.MinOrderValue, c.MaxDiscountAmount,
		formatTime(c.StartDate), formatTime(c.EndDate), c.UsageLimit, c.UsedCount, boolToInt(c.IsActive),
	)
	if err != nil {
		return fmt.Errorf("sqlite: put coupon %q: %w", c.Code, err)
	}
	return nil
}

// Get loads one coupon by its (normalised) code.
func (s *CouponStore) Get(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
		SELECT code, discount_type, discount_value, min_order_value, max_discount_amount,
		       start_date, end_date, usage_limit, used_count, is_active
		FROM   coupons
		WHERE  code = ?`

	code = domain.NormalizeCode(code)
	row := s.db.QueryRowContext(ctx, q, code)

	var c domain.Coupon
	var discountType, startDate, endDate string
	var active int
	err := row.Scan(&c.Code, &discountType, &c.DiscountValue, &c.MinOrderValue, &c.MaxDiscountAmount,
		&startDate, &endDate, &c.UsageLimit, &c.UsedCount, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("coupon %s does not exist", code)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get coupon %q: %w", code, err)
	}

	c.DiscountType = domain.DiscountType(discountType)
	c.IsActive = active != 0
	if c.StartDate, err = parseTime(startDate); err != nil {
		return nil, err
	}
	if c.EndDate, err = parseTime(endDate); err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementUsage atomically bumps used_count, but only while the usage
// limit (when one is set) has not been reached. Reports whether the update
// was applied; false for a missing coupon as well as an exhausted one.
func (s *CouponStore) IncrementUsage(ctx context.Context, code string) (bool, error) {
	const q = `
		UPDATE coupons
		SET    used_count = used_count + 1
		WHERE  code = ? AND (usage_limit = 0 OR used_count < usage_limit)`

	res, err := s.db.ExecContext(ctx, q, domain.NormalizeCode(code))
	if err != nil {
		return false, fmt.Errorf("sqlite: increment usage of %q: %w", code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: increment usage of %q: %w", code, err)
	}
	return n > 0, nil
}

// DecrementUsage atomically lowers used_count, flooring at zero. A missing
// coupon or an already-zero count is a no-op.
func (s *CouponStore) DecrementUsage(ctx context.Context, code string) error {
	const q = `
		UPDATE coupons
		SET    used_count = used_count - 1
		WHERE  code = ? AND used_count > 0`

	if _, err := s.db.ExecContext(ctx, q, domain.NormalizeCode(code)); err != nil {
		return fmt.Errorf("sqlite: decrement usage of %q: %w", code, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
