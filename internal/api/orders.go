package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/grocery-orders/internal/domain/basket"
	"github.com/xenking/grocery-orders/internal/domain/order"
	"github.com/xenking/grocery-orders/internal/domain/pricing"
)

// maxBasketBody bounds the accepted request body size.
const maxBasketBody = 1 << 20

// Calculations prices the submitted basket and responds with the total cost,
// e.g. {"totalCost":"$1.45"}. No stock verification is performed here.
func (h *Handler) Calculations(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r); !ok {
		return
	}
	items, ok := decodeBasket(w, r)
	if !ok {
		return
	}

	result := h.pricer.Price(basket.TallyOf(items))

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("totalCost")
	e.Str(pricing.Amount(result.Total))
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.Write(e.Bytes())
}

// PlaceOrder runs the fulfillment workflow for the submitted basket and
// responds with the composed plain-text confirmation or the out-of-stock
// message.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(w, r)
	if !ok {
		return
	}
	items, ok := decodeBasket(w, r)
	if !ok {
		return
	}

	mailAddress := r.URL.Query().Get("mailAddress")
	if mailAddress == "" {
		http.Error(w, "mailAddress query parameter required", http.StatusBadRequest)
		return
	}

	result, err := h.orders.Place(r.Context(), order.PlaceRequest{
		UserID:      userID,
		MailAddress: mailAddress,
		Basket:      items,
	})
	if err != nil {
		zctx.From(r.Context()).Error("place order", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, result.Message)
}

// identity extracts the required caller identity header, responding with a
// client error when it is missing.
func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		http.Error(w, "USER_ID header required", http.StatusBadRequest)
		return "", false
	}
	return userID, true
}

// decodeBasket reads the request body as a JSON array of item identifiers,
// responding with a client error when the body is missing or malformed.
func decodeBasket(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBasketBody))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		http.Error(w, "request body must be a JSON array of item identifiers", http.StatusBadRequest)
		return nil, false
	}

	var items []string
	d := jx.DecodeBytes(body)
	if err := d.Arr(func(d *jx.Decoder) error {
		id, err := d.Str()
		if err != nil {
			return err
		}
		items = append(items, id)
		return nil
	}); err != nil {
		http.Error(w, "request body must be a JSON array of item identifiers", http.StatusBadRequest)
		return nil, false
	}
	return items, true
}
