package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// OrderStore persists orders. Line items, the shipping address, the coupon
// snapshot and the payment result are JSON columns: frozen value objects
// captured at order time, never foreign keys resolved at read time.
type OrderStore struct {
	db *sql.DB
}

// Create inserts a new order row.
func (s *OrderStore) Create(ctx context.Context, o *domain.Order) error {
	const q = `
		INSERT INTO orders
			(id, user_id, items, shipping_address, payment_method,
			 items_price, shipping_price, discount_amount, total_price,
			 coupon_applied, status, is_paid, paid_at, payment_result,
			 cancel_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	items, addr, coupon, payment, err := encodeOrderDocs(o)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, q,
		o.ID, o.UserID, items, addr, o.PaymentMethod,
		o.ItemsPrice, o.ShippingPrice, o.DiscountAmount, o.TotalPrice,
		coupon, string(o.Status), boolToInt(o.IsPaid), nullableTime(o.PaidAt), payment,
		o.CancelReason, formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create order %q: %w", o.ID, err)
	}
	return nil
}

// Update rewrites the mutable order columns: status, payment state and
// cancel reason. Identity, items and the price breakdown are immutable.
func (s *OrderStore) Update(ctx context.Context, o *domain.Order) error {
	const q = `
		UPDATE orders
		SET    status = ?, is_paid = ?, paid_at = ?, payment_result = ?,
		       cancel_reason = ?, updated_at = ?
		WHERE  id = ?`

	var payment any
	if o.PaymentResult != nil {
		b, err := json.Marshal(o.PaymentResult)
		if err != nil {
			return fmt.Errorf("sqlite: encode payment result for %q: %w", o.ID, err)
		}
		payment = string(b)
	}

	o.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, q,
		string(o.Status), boolToInt(o.IsPaid), nullableTime(o.PaidAt), payment,
		o.CancelReason, formatTime(o.UpdatedAt), o.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update order %q: %w", o.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update order %q: %w", o.ID, err)
	}
	if n == 0 {
		return domain.NotFound("order %s not found", o.ID)
	}
	return nil
}

const orderColumns = `
	id, user_id, items, shipping_address, payment_method,
	items_price, shipping_price, discount_amount, total_price,
	coupon_applied, status, is_paid, paid_at, payment_result,
	cancel_reason, created_at, updated_at`

// Get loads one order by ID.
func (s *OrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT` + orderColumns + ` FROM orders WHERE id = ?`

	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}
	return o, nil
}

// ListByUser returns all orders placed by userID, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	q := `SELECT` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders for %q: %w", userID, err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// List returns one page of all orders, newest first, plus the total count.
func (s *OrderStore) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: count orders: %w", err)
	}

	q := `SELECT` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var items, addr string
	var coupon, paidAt, payment sql.NullString
	var isPaid int
	var createdAt, updatedAt string

	err := row.Scan(
		&o.ID, &o.UserID, &items, &addr, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.DiscountAmount, &o.TotalPrice,
		&coupon, (*string)(&o.Status), &isPaid, &paidAt, &payment,
		&o.CancelReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.IsPaid = isPaid != 0
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal([]byte(addr), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if coupon.Valid {
		o.CouponApplied = &domain.CouponApplied{}
		if err := json.Unmarshal([]byte(coupon.String), o.CouponApplied); err != nil {
			return nil, fmt.Errorf("decode coupon snapshot: %w", err)
		}
	}
	if payment.Valid {
		o.PaymentResult = &domain.PaymentResult{}
		if err := json.Unmarshal([]byte(payment.String), o.PaymentResult); err != nil {
			return nil, fmt.Errorf("decode payment result: %w", err)
		}
	}
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return nil, err
		}
		o.PaidAt = &t
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func encodeOrderDocs(o *domain.Order) (items, addr string, coupon, payment any, err error) {
	b, err := json.Marshal(o.Items)
	if err != nil {
		return "", "", nil, nil, fmt.Errorf("sqlite: encode items for %q: %w", o.ID, err)
	}
	items = string(b)

	b, err = json.Marshal(o.ShippingAddress)
	if err != nil {
		return "", "", nil, nil, fmt.Errorf("sqlite: encode shipping address for %q: %w", o.ID, err)
	}
	addr = string(b)

	if o.CouponApplied != nil {
		b, err = json.Marshal(o.CouponApplied)
		if err != nil {
			return "", "", nil, nil, fmt.Errorf("sqlite: encode coupon snapshot for %q: %w", o.ID, err)
		}
		coupon = string(b)
	}
	if o.PaymentResult != nil {
		b, err = json.Marshal(o.PaymentResult)
		if err != nil {
			return "", "", nil, nil, fmt.Errorf("sqlite: encode payment result for %q: %w", o.ID, err)
		}
		payment = string(b)
	}
	return items, addr, coupon, payment, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
