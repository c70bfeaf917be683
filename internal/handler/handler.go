// Package handler exposes the order service over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amankrmj01/bakery-order-service/internal/domain/order"
)

// Handler wires the order service into HTTP routes, delegating all business
// logic to the order service.
type Handler struct {
	orders *order.Service
}

// NewHandler constructs a Handler around the order service.
func NewHandler(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/recent", h.ListRecent)
		r.Get("/statistics", h.Statistics)
		r.Get("/number/{orderNumber}", h.GetOrderByNumber)
		r.Get("/user/{userID}", h.ListByUser)
		r.Get("/status/{status}", h.ListByStatus)
		r.Get("/{orderID}", h.GetOrder)
		r.Patch("/{orderID}/status", h.UpdateStatus)
		r.Post("/{orderID}/cancel", h.CancelOrder)
	})

	r.Post("/payments/callback", h.PaymentCallback)

	return r
}
