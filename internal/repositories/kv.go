package repositories

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"pallettrack/internal/storage"
)

// Every repository follows the same transaction boundary: read the full
// collection, mutate in memory, write the full collection back. The
// single-writer assumption makes this safe; there is no delta protocol.

// readList loads and decodes the JSON collection under key. Unreachable
// storage and corrupt payloads both degrade to an empty collection so
// reads never fail the caller.
func readList[T any](ctx context.Context, store storage.Store, log zerolog.Logger, key string) []T {
	data, err := store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage read failed, treating collection as empty")
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt collection payload, treating as empty")
		return nil
	}
	return items
}

// writeList replaces the collection under key. Write failures are
// logged and swallowed: the current call keeps its in-memory result and
// the next successful write restores durability.
func writeList[T any](ctx context.Context, store storage.Store, log zerolog.Logger, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to encode collection")
		return
	}
	if err := store.Set(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("storage write failed, change not persisted")
	}
}
