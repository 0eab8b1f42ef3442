package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Khoi123345/bookstore-platform/internal/order/auditlog"
)

// EventStore is the SQLite implementation of auditlog.Repository.
type EventStore struct {
	db *sql.DB
}

// Append inserts a new transition event. Safe to call concurrently.
func (s *EventStore) Append(ctx context.Context, e *auditlog.Event) error {
	const q = `
		INSERT INTO order_events
			(order_id, from_status, to_status, actor_id, note, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		e.OrderID, string(e.FromStatus), string(e.ToStatus),
		e.ActorID, e.Note, e.TraceID, e.SpanID, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append event for order %q: %w", e.OrderID, err)
	}
	return nil
}

// ListByOrder returns the transition history of one order, oldest first.
func (s *EventStore) ListByOrder(ctx context.Context, orderID string) ([]auditlog.Event, error) {
	const q = `
		SELECT order_id, from_status, to_status, actor_id, note, trace_id, span_id, created_at
		FROM   order_events
		WHERE  order_id = ?
		ORDER  BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list events for order %q: %w", orderID, err)
	}
	defer rows.Close()

	events := []auditlog.Event{}
	for rows.Next() {
		var e auditlog.Event
		var createdAt string
		err := rows.Scan(&e.OrderID, (*string)(&e.FromStatus), (*string)(&e.ToStatus),
			&e.ActorID, &e.Note, &e.TraceID, &e.SpanID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ auditlog.Repository = (*EventStore)(nil)
