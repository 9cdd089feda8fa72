package repositories

import (
	"context"

	"github.com/rs/zerolog"

	"pallettrack/internal/models"
	"pallettrack/internal/storage"
)

// PalletRepository persists the pallet catalog as one list.
type PalletRepository interface {
	List(ctx context.Context) []models.Pallet
	Save(ctx context.Context, items []models.Pallet)
}

type palletRepo struct {
	store storage.Store
	log   zerolog.Logger
	key   string
}

func NewPalletRepository(store storage.Store, log zerolog.Logger, namespace string) PalletRepository {
	return &palletRepo{
		store: store,
		log:   log,
		key:   storage.Key(namespace, "pallets"),
	}
}

func (r *palletRepo) List(ctx context.Context) []models.Pallet {
	return readList[models.Pallet](ctx, r.store, r.log, r.key)
}

func (r *palletRepo) Save(ctx context.Context, items []models.Pallet) {
	writeList(ctx, r.store, r.log, r.key, items)
}
