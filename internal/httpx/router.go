package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Khoi123345/bookstore-platform/internal/httpx/middlewares"
)

func NewRouter(orders *OrderHandler, carts *CartHandler, coupons *CouponHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "bookstore-platform"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.CreateOrder)
			r.Get("/", orders.ListOrders)
			r.Get("/myorders", orders.ListMyOrders)
			r.Get("/{id}", orders.GetOrder)
			r.Get("/{id}/events", orders.ListOrderEvents)
			r.Put("/{id}/status", orders.UpdateOrderStatus)
			r.Put("/{id}/cancel", orders.CancelOrder)
			r.Put("/{id}/return", orders.ReturnOrder)
			r.Put("/{id}/pay", orders.PayOrder)
		})

		r.Post("/coupons/validate", coupons.ValidateCoupon)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Post("/", carts.AddItem)
			r.Delete("/", carts.ClearCart)
			r.Delete("/remove-multiple", carts.RemoveItems)
			r.Put("/{bookID}", carts.UpdateItem)
			r.Delete("/{bookID}", carts.RemoveItem)
		})
	})

	return r
}
