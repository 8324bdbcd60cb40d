package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gamms/storefront/internal/domain"
	"github.com/gamms/storefront/internal/storage"
)

// Store is the single source of truth for cart contents. It serializes the
// whole cart into one storage slot and decodes it back on every read, so any
// number of view controllers can depend on it without sharing state.
//
// Storage failures never surface to callers: an unavailable, corrupt or
// missing slot reads as an empty cart. Cart corruption must never take a
// page down with it.
type Store struct {
	mu        sync.Mutex
	slot      storage.Slot
	observers []func(items []domain.LineItem)
	log       logrus.FieldLogger
}

func NewStore(slot storage.Slot, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{slot: slot, log: log}
}

// Subscribe registers a render callback. Every mutation invokes all
// callbacks synchronously with the new state, before the mutating call
// returns, so storage and rendered views never disagree between events.
// Callbacks run under the store's internal lock and must not call back
// into the Store.
func (s *Store) Subscribe(fn func(items []domain.LineItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Get returns the current line items. Absent, corrupt or unreadable storage
// yields an empty sequence.
func (s *Store) Get(ctx context.Context) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Set replaces the entire cart. A nil input is coerced to an empty cart.
func (s *Store) Set(ctx context.Context, items []domain.LineItem) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]domain.LineItem, len(items))
	copy(copied, items)
	s.persist(ctx, copied)
	s.notifyLocked(copied)
	return copied
}

// AddItem merges by id: an existing line has its quantity incremented by the
// incoming quantity (default 1), otherwise a new line is appended with price
// defaulted to 0 and quantity defaulted to 1.
func (s *Store) AddItem(ctx context.Context, item domain.LineItem) []domain.LineItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.Price < 0 {
		item.Price = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx)
	merged := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	s.persist(ctx, items)
	s.notifyLocked(items)
	return items
}

// RemoveItem drops the first line whose id matches. Removing an absent id is
// a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx)
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			break
		}
	}
	s.persist(ctx, items)
	s.notifyLocked(items)
	return items
}

// Clear empties the cart and removes the slot key entirely, not just an
// empty sequence.
func (s *Store) Clear(ctx context.Context) []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Delete(ctx); err != nil {
		s.log.WithError(err).Warn("cart: failed to delete storage slot")
	}
	s.notifyLocked(nil)
	return []domain.LineItem{}
}

// Total sums price*quantity over all lines.
func (s *Store) Total(ctx context.Context) float64 {
	total := 0.0
	for _, it := range s.Get(ctx) {
		total += it.Subtotal()
	}
	return total
}

// Count sums the quantities over all lines. Drives the badge display.
func (s *Store) Count(ctx context.Context) int {
	count := 0
	for _, it := range s.Get(ctx) {
		if it.Quantity > 0 {
			count += it.Quantity
		}
	}
	return count
}

func (s *Store) load(ctx context.Context) []domain.LineItem {
	data, err := s.slot.Read(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).Warn("cart: failed to read storage slot")
		}
		return []domain.LineItem{}
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.WithError(err).Warn("cart: corrupt slot payload, treating as empty")
		return []domain.LineItem{}
	}
	if items == nil {
		return []domain.LineItem{}
	}
	return items
}

func (s *Store) persist(ctx context.Context, items []domain.LineItem) {
	data, err := json.Marshal(items)
	if err != nil {
		s.log.WithError(err).Warn("cart: failed to encode cart")
		return
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.log.WithError(err).Warn("cart: failed to write storage slot")
	}
}

// notifyLocked runs every observer with a copy of the new state. The caller
// holds s.mu, so notifications are delivered in the same order states were
// persisted and a slow observer cannot be overtaken by a later mutation.
func (s *Store) notifyLocked(items []domain.LineItem) {
	for _, fn := range s.observers {
		view := make([]domain.LineItem, len(items))
		copy(view, items)
		fn(view)
	}
}
