package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Comment string `json:"comment"`
}

// OrderSnapshot is the write-once record built at checkout time: the customer
// fields, a copy of the cart lines at submission time, and the computed total.
// It is never persisted; it exists only for the duration of the submission.
type OrderSnapshot struct {
	ID         string     `json:"id"`
	Customer   Customer   `json:"customer"`
	Items      []LineItem `json:"items"`
	Total      float64    `json:"total"`
	CapturedAt time.Time  `json:"captured_at"`
}

// NewOrderSnapshot copies the given lines and computes the total as the sum of
// price*quantity, rounded to two decimal places.
func NewOrderSnapshot(customer Customer, items []LineItem) *OrderSnapshot {
	copied := make([]LineItem, len(items))
	copy(copied, items)

	total := decimal.Zero
	for _, it := range copied {
		sub := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(sub)
	}

	return &OrderSnapshot{
		ID:         uuid.NewString(),
		Customer:   customer,
		Items:      copied,
		Total:      total.Round(2).InexactFloat64(),
		CapturedAt: time.Now(),
	}
}
