package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewRouter wires the storefront's HTTP surface: the catalog-page and
// cart-page controllers over a shared cart store.
func NewRouter(catalogH *CatalogHandler, cartH *CartHandler, log *logrus.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Catalog-page checkout trigger never checks out inline.
	r.Get("/checkout", catalogH.CheckoutRedirect)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", catalogH.GetCatalog)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartH.GetCart)
			r.Delete("/", cartH.ClearCart)
			r.Get("/badge", catalogH.GetBadge)
			r.Post("/items", catalogH.AddItem)
			r.Put("/items/{id}", cartH.UpdateQuantity)
			r.Delete("/items/{id}", cartH.RemoveItem)
			r.Post("/confirmation/dismiss", catalogH.DismissConfirmation)
		})

		r.Post("/checkout", cartH.SubmitCheckout)
	})

	return otelhttp.NewHandler(r, "storefront")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
