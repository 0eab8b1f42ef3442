// Package auditlog defines the order transition log.
//
// Every order status change appends one immutable event row. The log serves
// two purposes: support staff can see exactly how an order reached its
// current state, and each row carries the OTel trace_id of the request that
// caused it, so a disputed transition can be followed straight into the
// distributed trace.
package auditlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// Event is a single row in the order_events table: one point-in-time order
// status transition.
type Event struct {
	// OrderID joins the event with business data.
	OrderID string

	// FromStatus is empty for the creation event.
	FromStatus domain.OrderStatus
	ToStatus   domain.OrderStatus

	// ActorID is the user or admin who drove the transition.
	ActorID string

	// Note carries transition context such as a cancel reason.
	Note string

	// TraceID is the W3C trace ID (32 hex chars) of the OTel span that was
	// active when the transition ran. Empty when no span was recording.
	TraceID string

	// SpanID pinpoints the exact operation within the trace (16 hex chars).
	SpanID string

	CreatedAt time.Time
}

// Repository is the port for persisting transition events. The order
// service depends on this abstraction, not on SQLite directly, so tests can
// swap in an in-memory implementation.
type Repository interface {
	// Append persists a new event. The log is append-only, never upserted.
	Append(ctx context.Context, e *Event) error

	// ListByOrder returns all events for one order, oldest first.
	ListByOrder(ctx context.Context, orderID string) ([]Event, error)
}

// NewEvent builds an Event with the trace identifiers extracted from the
// active OpenTelemetry span in ctx. Without an active span (unit tests)
// both IDs are left empty.
func NewEvent(ctx context.Context, orderID string, from, to domain.OrderStatus, actorID, note string) *Event {
	e := &Event{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
