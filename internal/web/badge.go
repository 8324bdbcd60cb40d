package web

import (
	"context"
	"sync/atomic"

	"github.com/gamms/storefront/internal/cart"
	"github.com/gamms/storefront/internal/domain"
)

// Badge is the numeric cart-count display any page may expose. It subscribes
// to the store so every mutation updates it synchronously, whichever view
// triggered the change.
type Badge struct {
	count atomic.Int64
}

func NewBadge(ctx context.Context, store *cart.Store) *Badge {
	b := &Badge{}
	b.count.Store(int64(store.Count(ctx)))
	store.Subscribe(func(items []domain.LineItem) {
		total := 0
		for _, it := range items {
			if it.Quantity > 0 {
				total += it.Quantity
			}
		}
		b.count.Store(int64(total))
	})
	return b
}

func (b *Badge) Count() int {
	return int(b.count.Load())
}
