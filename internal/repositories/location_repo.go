package repositories

import (
	"context"

	"github.com/rs/zerolog"

	"pallettrack/internal/models"
	"pallettrack/internal/storage"
)

// LocationRepository persists the three per-kind catalogs. Each kind is
// an independent collection under its own key; ordering within a
// collection is whatever the caller saved, by convention newest first.
type LocationRepository interface {
	List(ctx context.Context, kind models.LocationKind) []models.Location
	Save(ctx context.Context, kind models.LocationKind, items []models.Location)
}

type locationRepo struct {
	store storage.Store
	log   zerolog.Logger
	keys  map[models.LocationKind]string
}

func NewLocationRepository(store storage.Store, log zerolog.Logger, namespace string) LocationRepository {
	return &locationRepo{
		store: store,
		log:   log,
		keys: map[models.LocationKind]string{
			models.KindDriver: storage.Key(namespace, "drivers"),
			models.KindShop:   storage.Key(namespace, "shops"),
			models.KindDepot:  storage.Key(namespace, "depots"),
		},
	}
}

func (r *locationRepo) List(ctx context.Context, kind models.LocationKind) []models.Location {
	key, ok := r.keys[kind]
	if !ok {
		return nil
	}
	return readList[models.Location](ctx, r.store, r.log, key)
}

func (r *locationRepo) Save(ctx context.Context, kind models.LocationKind, items []models.Location) {
	key, ok := r.keys[kind]
	if !ok {
		r.log.Error().Str("kind", string(kind)).Msg("refusing to save catalog of unknown kind")
		return
	}
	writeList(ctx, r.store, r.log, key, items)
}
