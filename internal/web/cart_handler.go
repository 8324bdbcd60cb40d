package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gamms/storefront/internal/cart"
	"github.com/gamms/storefront/internal/checkout"
	"github.com/gamms/storefront/internal/domain"
)

// CartHandler is the cart-page view controller: the line-item list, quantity
// edits, removal, clearing and the checkout form submission.
type CartHandler struct {
	store    *cart.Store
	checkout *checkout.Service
	badge    *Badge
}

func NewCartHandler(store *cart.Store, co *checkout.Service, badge *Badge) *CartHandler {
	return &CartHandler{store: store, checkout: co, badge: badge}
}

type LineItemView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	Price         float64 `json:"price"`
	PriceLabel    string  `json:"price_label"`
	Quantity      int     `json:"quantity"`
	SubtotalLabel string  `json:"subtotal_label"`
}

type CartPageView struct {
	Items   []LineItemView `json:"items"`
	Total   string         `json:"total"`
	Badge   int            `json:"badge"`
	Empty   bool           `json:"empty"`
	Message string         `json:"message,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity json.Number `json:"quantity"`
}

// GetCart renders the cart page. An empty cart replaces the list with the
// empty-state message and forces the total to "0.00".
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.pageView(r))
}

// UpdateQuantity applies an edit to a line's quantity field. Non-numeric or
// sub-1 entries are rejected: the stored cart is untouched and the field is
// reported back as 1.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "quantity must be an integer of at least 1",
			"code":     "invalid_quantity",
			"quantity": 1,
		})
		return
	}

	quantity, err := req.Quantity.Int64()
	if err != nil || quantity < 1 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "quantity must be an integer of at least 1",
			"code":     "invalid_quantity",
			"quantity": 1,
		})
		return
	}

	items := h.store.Get(r.Context())
	found := false
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = int(quantity)
			found = true
			break
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "not_found", "no such cart line")
		return
	}

	h.store.Set(r.Context(), items)
	respondJSON(w, http.StatusOK, h.pageView(r))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.store.RemoveItem(r.Context(), id)
	respondJSON(w, http.StatusOK, h.pageView(r))
}

// ClearCart empties the cart. It requires the explicit confirmation
// parameter, the API equivalent of the "¿Vaciar el carrito?" prompt.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusConflict, "confirmation_required", "pass confirm=true to empty the cart")
		return
	}
	h.store.Clear(r.Context())
	respondJSON(w, http.StatusOK, h.pageView(r))
}

// SubmitCheckout runs the checkout flow against the current cart.
func (h *CartHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var in checkout.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome, err := h.checkout.Submit(r.Context(), in)
	if err != nil {
		var vErr *checkout.ValidationError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", "No hay items en el carrito.")
		case errors.As(err, &vErr):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": vErr.Reason,
				"code":  "invalid_" + vErr.Field,
				"field": vErr.Field,
			})
		default:
			logFrom(r.Context()).WithError(err).Error("checkout failed")
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

func (h *CartHandler) pageView(r *http.Request) CartPageView {
	items := h.store.Get(r.Context())
	if len(items) == 0 {
		return CartPageView{
			Items:   []LineItemView{},
			Total:   "0.00",
			Badge:   h.badge.Count(),
			Empty:   true,
			Message: "Tu carrito está vacío.",
		}
	}

	views := make([]LineItemView, 0, len(items))
	total := 0.0
	for _, it := range items {
		total += it.Subtotal()
		views = append(views, LineItemView{
			ID:            it.ID,
			Name:          it.Name,
			Image:         it.Image,
			Price:         it.Price,
			PriceLabel:    domain.FormatSoles(it.Price),
			Quantity:      it.Quantity,
			SubtotalLabel: domain.FormatSoles(it.Subtotal()),
		})
	}

	return CartPageView{
		Items: views,
		Total: decimal.NewFromFloat(total).StringFixed(2),
		Badge: h.badge.Count(),
	}
}
