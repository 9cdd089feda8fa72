package repositories

import (
	"context"

	"github.com/rs/zerolog"

	"pallettrack/internal/models"
	"pallettrack/internal/storage"
)

// ScanRepository persists the scan history (most recent first) and the
// last scanned code, which the scan screen uses to prefill manual entry.
type ScanRepository interface {
	List(ctx context.Context) []models.ScanEvent
	Save(ctx context.Context, items []models.ScanEvent)
	LastScan(ctx context.Context) string
	SetLastScan(ctx context.Context, code string)
}

type scanRepo struct {
	store       storage.Store
	log         zerolog.Logger
	historyKey  string
	lastScanKey string
}

func NewScanRepository(store storage.Store, log zerolog.Logger, namespace string) ScanRepository {
	return &scanRepo{
		store:       store,
		log:         log,
		historyKey:  storage.Key(namespace, "history"),
		lastScanKey: storage.Key(namespace, "lastscan"),
	}
}

func (r *scanRepo) List(ctx context.Context) []models.ScanEvent {
	return readList[models.ScanEvent](ctx, r.store, r.log, r.historyKey)
}

func (r *scanRepo) Save(ctx context.Context, items []models.ScanEvent) {
	writeList(ctx, r.store, r.log, r.historyKey, items)
}

func (r *scanRepo) LastScan(ctx context.Context) string {
	data, err := r.store.Get(ctx, r.lastScanKey)
	if err != nil {
		r.log.Warn().Err(err).Str("key", r.lastScanKey).Msg("storage read failed, no last scan")
		return ""
	}
	return string(data)
}

func (r *scanRepo) SetLastScan(ctx context.Context, code string) {
	if err := r.store.Set(ctx, r.lastScanKey, []byte(code)); err != nil {
		r.log.Warn().Err(err).Str("key", r.lastScanKey).Msg("storage write failed, change not persisted")
	}
}
