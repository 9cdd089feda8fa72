package repositories

import (
	"context"

	"github.com/rs/zerolog"

	"pallettrack/internal/models"
	"pallettrack/internal/storage"
)

// StockRepository persists the two halves of the stock subsystem: the
// append-only movement ledger (most recent first) and the materialized
// balance rows derived from it.
type StockRepository interface {
	Movements(ctx context.Context) []models.StockMovement
	SaveMovements(ctx context.Context, moves []models.StockMovement)
	Balances(ctx context.Context) []models.BalanceRow
	SaveBalances(ctx context.Context, rows []models.BalanceRow)
}

type stockRepo struct {
	store       storage.Store
	log         zerolog.Logger
	movesKey    string
	balancesKey string
}

func NewStockRepository(store storage.Store, log zerolog.Logger, namespace string) StockRepository {
	return &stockRepo{
		store:       store,
		log:         log,
		movesKey:    storage.Key(namespace, "stock_moves"),
		balancesKey: storage.Key(namespace, "stock"),
	}
}

func (r *stockRepo) Movements(ctx context.Context) []models.StockMovement {
	return readList[models.StockMovement](ctx, r.store, r.log, r.movesKey)
}

func (r *stockRepo) SaveMovements(ctx context.Context, moves []models.StockMovement) {
	writeList(ctx, r.store, r.log, r.movesKey, moves)
}

func (r *stockRepo) Balances(ctx context.Context) []models.BalanceRow {
	return readList[models.BalanceRow](ctx, r.store, r.log, r.balancesKey)
}

func (r *stockRepo) SaveBalances(ctx context.Context, rows []models.BalanceRow) {
	writeList(ctx, r.store, r.log, r.balancesKey, rows)
}
