package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khoi123345/bookstore-platform/internal/cart"
	"github.com/Khoi123345/bookstore-platform/internal/coupon"
	"github.com/Khoi123345/bookstore-platform/internal/domain"
	"github.com/Khoi123345/bookstore-platform/internal/httpx"
	"github.com/Khoi123345/bookstore-platform/internal/inventory"
	"github.com/Khoi123345/bookstore-platform/internal/order"
	"github.com/Khoi123345/bookstore-platform/internal/store/sqlite"
)

type server struct {
	handler http.Handler
	st      *sqlite.Store
}

func newServer(t *testing.T) *server {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	carts := cart.NewService(st.Carts, st.Books)
	validator := coupon.NewValidator(st.Coupons)
	orders := order.NewService(
		st.Orders, st.Books,
		inventory.NewLedger(st.Books),
		coupon.NewLedger(st.Coupons),
		validator,
		carts,
		st.Events,
		nil,
	)

	h := httpx.NewRouter(
		httpx.NewOrderHandler(orders),
		httpx.NewCartHandler(carts),
		httpx.NewCouponHandler(validator),
	)
	return &server{handler: h, st: st}
}

func (s *server) seedBook(t *testing.T, id, title string, price int64, stock int) {
	t.Helper()
	require.NoError(t, s.st.Books.Put(context.Background(), &domain.Book{
		ID:    id,
		Title: title,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}))
}

// do issues a request with the identity headers the gateway would attach.
func (s *server) do(t *testing.T, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("x-user-id", userID)
		req.Header.Set("x-user-role", role)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 100000, 10)

	rec := s.do(t, http.MethodPost, "/api/orders", "user-1", "customer", httpx.CreateOrderRequest{
		OrderItems:    []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 2}},
		PaymentMethod: "cod",
		ShippingAddress: httpx.ShippingAddressDTO{
			FullName: "Nguyen Van A", Phone: "0901234567",
			Address: "12 Ly Thuong Kiet", City: "Ha Noi",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[httpx.OrderResponse](t, rec)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, resp.ItemsPrice.Equal(decimal.NewFromInt(200000)), "got %s", resp.ItemsPrice)
	assert.True(t, resp.ShippingPrice.Equal(decimal.NewFromInt(30000)), "got %s", resp.ShippingPrice)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(230000)), "got %s", resp.TotalPrice)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Dune", resp.Items[0].Title)
}

func TestCreateOrderRequiresIdentity(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/api/orders", "", "", httpx.CreateOrderRequest{
		OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 1}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	resp := decodeBody[httpx.ErrorResponse](t, rec)
	assert.Equal(t, "forbidden", resp.Error)
	assert.Equal(t, "authentication required", resp.Message)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "The Left Hand of Darkness", 100000, 10)

	rec := s.do(t, http.MethodPost, "/api/orders", "user-1", "customer", httpx.CreateOrderRequest{
		OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 20}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[httpx.ErrorResponse](t, rec)
	assert.Equal(t, "bad_request", resp.Error)
	assert.Contains(t, resp.Message, "The Left Hand of Darkness")
}

func TestGetOrderAccess(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 100000, 10)

	created := decodeBody[httpx.OrderResponse](t, s.do(t, http.MethodPost, "/api/orders", "user-1", "customer",
		httpx.CreateOrderRequest{OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 1}}}))

	rec := s.do(t, http.MethodGet, "/api/orders/"+created.ID, "user-1", "customer", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/"+created.ID, "user-2", "customer", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/"+created.ID, "admin-1", "admin", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/no-such-order", "user-1", "customer", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusUpdateIsAdminOnly(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 100000, 10)

	created := decodeBody[httpx.OrderResponse](t, s.do(t, http.MethodPost, "/api/orders", "user-1", "customer",
		httpx.CreateOrderRequest{OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 2}}}))

	rec := s.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", "user-1", "customer",
		httpx.UpdateStatusRequest{Status: "confirmed"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin role required", decodeBody[httpx.ErrorResponse](t, rec).Message)

	rec = s.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", "admin-1", "admin",
		httpx.UpdateStatusRequest{Status: "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmed", decodeBody[httpx.OrderResponse](t, rec).Status)

	b, err := s.st.Books.Get(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, 8, b.Stock, "confirmation reserves stock")

	rec = s.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", "admin-1", "admin",
		httpx.UpdateStatusRequest{Status: "delivered"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_state", decodeBody[httpx.ErrorResponse](t, rec).Error)
}

func TestCancelOrderEndpoint(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 100000, 10)

	created := decodeBody[httpx.OrderResponse](t, s.do(t, http.MethodPost, "/api/orders", "user-1", "customer",
		httpx.CreateOrderRequest{OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 1}}}))

	rec := s.do(t, http.MethodPut, "/api/orders/"+created.ID+"/cancel", "user-1", "customer",
		httpx.CancelOrderRequest{Reason: "ordered twice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[httpx.OrderResponse](t, rec)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "ordered twice", resp.CancelReason)
}

func TestOrderEventsEndpoint(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 100000, 10)

	created := decodeBody[httpx.OrderResponse](t, s.do(t, http.MethodPost, "/api/orders", "user-1", "customer",
		httpx.CreateOrderRequest{OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 1}}}))

	rec := s.do(t, http.MethodPut, "/api/orders/"+created.ID+"/status", "admin-1", "admin",
		httpx.UpdateStatusRequest{Status: "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/"+created.ID+"/events", "user-1", "customer", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	events := decodeBody[[]httpx.OrderEventResponse](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "pending", events[0].ToStatus)
	assert.Equal(t, "confirmed", events[1].ToStatus)
}

func TestListOrdersPagination(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 100000, 100)

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/api/orders", "user-1", "customer",
			httpx.CreateOrderRequest{OrderItems: []httpx.OrderItemDTO{{BookID: "book-1", Quantity: 1}}})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/orders?page=1&page_size=2", "user-1", "customer", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "listing all orders is admin only")

	rec = s.do(t, http.MethodGet, "/api/orders?page=1&page_size=2", "admin-1", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[httpx.OrderListResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Pages)
	assert.Len(t, resp.Orders, 2)
}

func TestCartEndpoints(t *testing.T) {
	s := newServer(t)
	s.seedBook(t, "book-1", "Dune", 120000, 10)

	rec := s.do(t, http.MethodPost, "/api/cart", "user-1", "customer",
		httpx.AddCartItemRequest{BookID: "book-1", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c := decodeBody[httpx.CartResponse](t, rec)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.TotalItems)
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(240000)), "got %s", c.TotalPrice)

	rec = s.do(t, http.MethodPut, "/api/cart/book-1", "user-1", "customer",
		httpx.UpdateCartItemRequest{Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decodeBody[httpx.CartResponse](t, rec).TotalItems)

	rec = s.do(t, http.MethodDelete, "/api/cart/book-1", "user-1", "customer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[httpx.CartResponse](t, rec).Items)

	rec = s.do(t, http.MethodGet, "/api/cart", "user-2", "customer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[httpx.CartResponse](t, rec).Items, "carts are per user")
}

func TestValidateCouponEndpoint(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.st.Coupons.Put(context.Background(), &domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		IsActive:      true,
	}))

	rec := s.do(t, http.MethodPost, "/api/coupons/validate", "user-1", "customer",
		httpx.ValidateCouponRequest{Code: "save10", OrderValue: decimal.NewFromInt(200000)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[httpx.ValidateCouponResponse](t, rec)
	assert.Equal(t, "SAVE10", resp.Coupon.Code)
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(20000)), "got %s", resp.DiscountAmount)

	rec = s.do(t, http.MethodPost, "/api/coupons/validate", "user-1", "customer",
		httpx.ValidateCouponRequest{Code: "NOSUCH", OrderValue: decimal.NewFromInt(200000)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
