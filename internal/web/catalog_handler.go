package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gamms/storefront/internal/cart"
	"github.com/gamms/storefront/internal/catalog"
	"github.com/gamms/storefront/internal/domain"
)

// CatalogHandler is the catalog-page view controller: product sections,
// offers, the badge, add-to-cart and the transient confirmation overlay.
type CatalogHandler struct {
	catalog *catalog.Catalog
	store   *cart.Store
	badge   *Badge

	mu      sync.Mutex
	overlay *ConfirmationView
}

func NewCatalogHandler(c *catalog.Catalog, store *cart.Store, badge *Badge) *CatalogHandler {
	return &CatalogHandler{catalog: c, store: store, badge: badge}
}

type ProductView struct {
	ID          string   `json:"id"`
	Ref         string   `json:"ref"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Price       float64  `json:"price"`
	PriceLabel  string   `json:"price_label"`
	Referential bool     `json:"referential"`
}

type CategoryView struct {
	Category string        `json:"category"`
	Products []ProductView `json:"products"`
}

type OfferView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	OriginalLabel string  `json:"original_label"`
	Price         float64 `json:"price"`
	PriceLabel    string  `json:"price_label"`
	Percent       int64   `json:"percent"`
}

type CatalogPageView struct {
	Sections []CategoryView `json:"sections"`
	Offers   []OfferView    `json:"offers"`
	Badge    int            `json:"badge"`
}

// ConfirmationView is the transient overlay shown after an add-to-cart. The
// price shown is referential when the product itself has none.
type ConfirmationView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	PriceLabel  string  `json:"price_label"`
	Quantity    int     `json:"quantity"`
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Offer     bool   `json:"offer"`
}

// GetCatalog renders the catalog page view model.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	groups := h.catalog.Grouped()
	sections := make([]CategoryView, 0, len(groups))
	for _, g := range groups {
		products := make([]ProductView, 0, len(g.Products))
		for _, p := range g.Products {
			products = append(products, productView(p))
		}
		sections = append(sections, CategoryView{Category: g.Category, Products: products})
	}

	offers := catalog.Offers(h.catalog.Products())
	offerViews := make([]OfferView, 0, len(offers))
	for _, o := range offers {
		price, _ := catalog.DisplayPrice(o.Product)
		offerViews = append(offerViews, OfferView{
			ID:            strconv.FormatInt(o.Product.ID, 10),
			Name:          o.Product.Name,
			Image:         o.Product.MainImage(),
			OriginalLabel: domain.FormatSoles(price),
			Price:         o.Price,
			PriceLabel:    domain.FormatSoles(o.Price),
			Percent:       o.Percent,
		})
	}

	respondJSON(w, http.StatusOK, CatalogPageView{
		Sections: sections,
		Offers:   offerViews,
		Badge:    h.badge.Count(),
	})
}

// GetBadge serves the cart-count display element.
func (h *CatalogHandler) GetBadge(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"count": h.badge.Count()})
}

// AddItem handles the add-to-cart interaction. While a confirmation overlay
// is open, further adds are a no-op until it is dismissed.
func (h *CatalogHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, ok := h.catalog.Find(req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "no such product")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.overlay != nil {
		respondError(w, http.StatusConflict, "overlay_open", "dismiss the open confirmation first")
		return
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	price := product.Price
	if req.Offer {
		for _, o := range catalog.Offers(h.catalog.Products()) {
			if o.Product.ID == product.ID {
				price = o.Price
				break
			}
		}
	}

	items := h.store.AddItem(r.Context(), domain.LineItem{
		ID:       req.ProductID,
		Name:     product.Name,
		Price:    price,
		Quantity: quantity,
		Image:    product.MainImage(),
	})

	inCart := quantity
	for _, it := range items {
		if it.ID == req.ProductID {
			inCart = it.Quantity
			break
		}
	}

	displayPrice, _ := catalog.DisplayPrice(product)
	confirmation := &ConfirmationView{
		ID:          req.ProductID,
		Name:        product.Name,
		Description: product.Description,
		Image:       product.MainImage(),
		PriceLabel:  "Precio referencia: " + domain.FormatSoles(displayPrice),
		Quantity:    inCart,
	}

	h.overlay = confirmation

	logFrom(r.Context()).WithField("product_id", req.ProductID).Info("added to cart")
	respondJSON(w, http.StatusCreated, confirmation)
}

// DismissConfirmation closes the overlay. Either exit route of the overlay
// (keep shopping, go to cart) goes through here.
func (h *CatalogHandler) DismissConfirmation(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.overlay = nil
	h.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// CheckoutRedirect: checkout never proceeds from the catalog page, it always
// navigates to the dedicated cart page.
func (h *CatalogHandler) CheckoutRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/v1/cart", http.StatusSeeOther)
}

func productView(p domain.Product) ProductView {
	price, referential := catalog.DisplayPrice(p)
	label := domain.FormatSoles(price)
	if referential {
		label += " (referencial)"
	}
	return ProductView{
		ID:          strconv.FormatInt(p.ID, 10),
		Ref:         catalog.RefCode(p),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.MainImage(),
		Images:      p.Images,
		Price:       price,
		PriceLabel:  label,
		Referential: referential,
	}
}
