package domain

// LineItem is one row in the cart. Name, price and image are denormalized
// copies taken from the catalog at add-time and are not re-synced later.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}
