package storage

import (
	"context"
	"errors"
)

// Slot is a single named key in a persistent backend, the server-side
// equivalent of one browser-storage entry. The cart store serializes the
// whole cart into it and reads the whole cart back out of it.
//
// A Slot does not synchronize concurrent writers beyond last-write-wins:
// a stale client of the same key may overwrite a newer cart.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Delete removes the key entirely. Deleting an absent key is a no-op.
	Delete(ctx context.Context) error
}

var ErrNotFound = errors.New("storage: slot not found")
