package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/httpx/middlewares"
	"github.com/Khoi123345/bookstore-platform/internal/order"
)

// OrderHandler translates HTTP requests into order service operations.
type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder places a new order for the authenticated user.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]order.CreateItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, order.CreateItem{BookID: it.BookID, Quantity: it.Quantity})
	}

	slog.InfoContext(r.Context(), "creating order", "user_id", actor.ID, "items", len(items))

	o, err := h.orders.Create(r.Context(), actor, order.CreateInput{
		Items: items,
		ShippingAddress: domain.ShippingAddress{
			FullName: req.ShippingAddress.FullName,
			Phone:    req.ShippingAddress.Phone,
			Address:  req.ShippingAddress.Address,
			City:     req.ShippingAddress.City,
		},
		PaymentMethod:  req.PaymentMethod,
		CouponCode:     req.CouponCode,
		IdempotencyKey: middlewares.IdempotencyKeyFromContext(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrderToResponse(o))
}

// GetOrder returns one order for its owner or an admin.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// ListMyOrders returns the authenticated user's orders.
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

// ListOrders returns one admin page of all orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 10)

	orders, total, err := h.orders.List(r.Context(), page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, OrderListResponse{
		Orders: mapOrders(orders),
		Page:   page,
		Pages:  pages,
		Total:  total,
	})
}

// UpdateOrderStatus drives the order state machine (admin only).
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), actor, chi.URLParam(r, "id"), domain.OrderStatus(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// CancelOrder cancels a pending or confirmed order (owner or admin).
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	o, err := h.orders.Cancel(r.Context(), actor, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// ReturnOrder marks a delivered (or refused-delivery) order as returned.
func (h *OrderHandler) ReturnOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Return(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// PayOrder records the payment gateway's result for an order.
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	var req PayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	o, err := h.orders.MarkPaid(r.Context(), chi.URLParam(r, "id"), domain.PaymentResult{
		ID:         req.ID,
		Status:     req.Status,
		UpdateTime: req.UpdateTime,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// ListOrderEvents returns the transition history of one order.
func (h *OrderHandler) ListOrderEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	events, err := h.orders.Events(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]OrderEventResponse, len(events))
	for i, e := range events {
		out[i] = mapEventToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderToResponse(o)
	}
	return out
}

// requireActor rejects requests that carry no identity headers.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor := middlewares.ActorFromContext(r.Context())
	if actor.ID == "" {
		writeError(w, http.StatusForbidden, "forbidden", "authentication required")
		return domain.Actor{}, false
	}
	return actor, true
}

// requireAdmin rejects requests whose actor is not an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return domain.Actor{}, false
	}
	if !actor.IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required")
		return domain.Actor{}, false
	}
	return actor, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
