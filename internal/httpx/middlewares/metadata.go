// Package middlewares carries request-scoped metadata into the context:
// the chi request id, the checkout idempotency key and the actor identity
// reported by the (out-of-process) auth gateway.
package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
)

// contextKey is an unexported type for context keys in this package.
// A custom type prevents collisions with keys from other packages.
type contextKey string

const (
	HeaderXRequestId      = "x-request-id"
	HeaderXIdempotencyKey = "x-idempotency-key"
	HeaderXUserId         = "x-user-id"
	HeaderXUserRole       = "x-user-role"

	// ContextKeyRequestID is the context key for the request ID.
	ContextKeyRequestID contextKey = HeaderXRequestId
	// ContextKeyIdempotencyKey is the context key for the idempotency key.
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
	// ContextKeyActor is the context key for the authenticated actor.
	ContextKeyActor contextKey = "actor"
)

// AttachRequestMetadata lifts the request id, idempotency key and actor
// headers into typed context values for the handlers.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, middleware.GetReqID(r.Context()))
		ctx = context.WithValue(ctx, ContextKeyIdempotencyKey, r.Header.Get(HeaderXIdempotencyKey))
		ctx = context.WithValue(ctx, ContextKeyActor, domain.Actor{
			ID:   r.Header.Get(HeaderXUserId),
			Role: r.Header.Get(HeaderXUserRole),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the actor attached by AttachRequestMetadata.
// The zero Actor means the request carried no identity.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(ContextKeyActor).(domain.Actor)
	return actor
}

// IdempotencyKeyFromContext returns the checkout idempotency key, if any.
func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(ContextKeyIdempotencyKey).(string)
	return key
}
