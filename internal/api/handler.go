// Package api serves the storefront order endpoints.
package api

import (
	"net/http"

	"github.com/xenking/grocery-orders/internal/domain/order"
	"github.com/xenking/grocery-orders/internal/domain/pricing"
)

// HeaderUserID is the caller identity header required on every endpoint.
const HeaderUserID = "USER_ID"

// Handler exposes basket calculations and order placement over HTTP.
type Handler struct {
	pricer *pricing.Engine
	orders *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(pricer *pricing.Engine, orders *order.Service) *Handler {
	return &Handler{
		pricer: pricer,
		orders: orders,
	}
}

// Routes registers the order endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders/calculations", h.Calculations)
	mux.HandleFunc("POST /orders", h.PlaceOrder)
}
