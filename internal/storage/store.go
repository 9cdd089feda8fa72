package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is the persistence contract the repositories run on: an opaque
// key-value surface with whole-value reads and writes. A write either
// fully succeeds or leaves the prior value in place; there is no partial
// update. Backends signal trouble through errors, which the repository
// layer degrades instead of propagating.
type Store interface {
	// Get returns the value stored under key, or (nil, nil) when the
	// key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// ErrUnavailable wraps backend failures so callers can distinguish an
// unreachable store from a corrupt payload.
var ErrUnavailable = errors.New("storage unavailable")

// Key builds the namespaced storage key for one collection, e.g.
// Key("pt", "pallets") -> "pt_pallets_v1". The version suffix guards
// against future layout changes of the serialized records.
func Key(namespace, collection string) string {
	return fmt.Sprintf("%s_%s_v1", namespace, collection)
}
