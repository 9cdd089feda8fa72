package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"pallettrack/internal/config"
	"pallettrack/internal/models"
	"pallettrack/internal/repositories"
)

// MovementInput is the payload for recording one stock movement. A zero
// Timestamp means "now".
type MovementInput struct {
	PalletType string
	Quantity   float64
	From       models.LocationRef
	To         models.LocationRef
	Note       string
	Timestamp  time.Time
}

// ScanMoveInput is the composed scan-to-movement payload: the scanned
// pallet moves from its inferred origin to the declared destination.
type ScanMoveInput struct {
	Code       string
	PalletType string
	Quantity   float64
	To         models.LocationRef
	Note       string
}

// ScanMoveResult reports the endpoints the composed operation used.
type ScanMoveResult struct {
	From     models.LocationRef
	To       models.LocationRef
	Movement *models.StockMovement
}

// StockService is the accounting core: the append-only movement ledger
// and the balance view derived from it. The maintained view and the
// full fold are equivalent for any well-formed ledger; the fold is the
// reference semantics.
type StockService interface {
	RecordMovement(ctx context.Context, input MovementInput) (*models.StockMovement, error)
	Movements(ctx context.Context, filter *models.MovementFilter) ([]models.StockMovement, error)
	Balances(ctx context.Context) ([]models.BalanceRow, error)
	BalanceFor(ctx context.Context, ref models.LocationRef, palletType string) (float64, error)
	RebuildBalances(ctx context.Context) error
	ClearLedger(ctx context.Context) error
	ResolveOrigin(ctx context.Context, code string) (models.LocationRef, error)
	MoveViaScan(ctx context.Context, input ScanMoveInput) (*ScanMoveResult, error)
}

type stockService struct {
	repo    repositories.StockRepository
	pallets PalletService
	cfg     *config.Config
	clock   clockwork.Clock
}

func NewStockService(repo repositories.StockRepository, pallets PalletService, cfg *config.Config, clock clockwork.Clock) StockService {
	return &stockService{repo: repo, pallets: pallets, cfg: cfg, clock: clock}
}

// RecordMovement validates the movement, prepends it to the ledger and
// applies both balance deltas. Negative balances are allowed: the
// system has no initial-inventory concept, so a location's first
// outbound move legitimately drives its row below zero.
func (s *stockService) RecordMovement(ctx context.Context, input MovementInput) (*models.StockMovement, error) {
	input.PalletType = strings.TrimSpace(input.PalletType)
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now()
	}
	move := models.StockMovement{
		ID:         newID("stk"),
		Timestamp:  ts,
		PalletType: input.PalletType,
		Quantity:   input.Quantity,
		From:       input.From,
		To:         input.To,
		Note:       input.Note,
	}

	moves := s.repo.Movements(ctx)
	moves = append([]models.StockMovement{move}, moves...)
	if len(moves) > s.cfg.MovementLimit {
		moves = moves[:s.cfg.MovementLimit]
	}
	s.repo.SaveMovements(ctx, moves)

	rows := s.repo.Balances(ctx)
	rows = applyDelta(rows, move.From, move.PalletType, -move.Quantity)
	rows = applyDelta(rows, move.To, move.PalletType, +move.Quantity)
	s.repo.SaveBalances(ctx, rows)

	return &move, nil
}

// Movements returns the ledger most recent first, optionally narrowed
// by pallet type and/or a location matching either endpoint.
func (s *stockService) Movements(ctx context.Context, filter *models.MovementFilter) ([]models.StockMovement, error) {
	moves := s.repo.Movements(ctx)
	if filter == nil {
		return moves, nil
	}

	wantType := strings.ToLower(strings.TrimSpace(filter.PalletType))
	var out []models.StockMovement
	for _, m := range moves {
		if wantType != "" && strings.ToLower(m.PalletType) != wantType {
			continue
		}
		if filter.Location != nil && !m.From.Equal(*filter.Location) && !m.To.Equal(*filter.Location) {
			continue
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Balances returns the maintained materialized view.
func (s *stockService) Balances(ctx context.Context) ([]models.BalanceRow, error) {
	return s.repo.Balances(ctx), nil
}

// BalanceFor reads one row; a missing row is zero.
func (s *stockService) BalanceFor(ctx context.Context, ref models.LocationRef, palletType string) (float64, error) {
	key := models.BalanceKey{Kind: ref.Kind, LocationID: ref.ID, PalletType: palletType}
	for _, row := range s.repo.Balances(ctx) {
		if row.Key() == key {
			return row.Quantity, nil
		}
	}
	return 0, nil
}

// RebuildBalances replaces the maintained view with a fold of the full
// ledger, the recovery path when the view is suspected stale.
func (s *stockService) RebuildBalances(ctx context.Context) error {
	rows := FoldBalances(s.repo.Movements(ctx))
	s.repo.SaveBalances(ctx, rows)
	return nil
}

// ClearLedger drops all movements and balances. Administrative only;
// normal operation never deletes ledger entries.
func (s *stockService) ClearLedger(ctx context.Context) error {
	s.repo.SaveMovements(ctx, nil)
	s.repo.SaveBalances(ctx, nil)
	return nil
}

// ResolveOrigin infers where a pallet currently sits: its last declared
// location if known, otherwise the default depot. All untracked pallets
// are assumed to start at the main depot; that is a stated assumption
// of the system, not a guess.
func (s *stockService) ResolveOrigin(ctx context.Context, code string) (models.LocationRef, error) {
	p, err := s.pallets.FindByCode(ctx, code)
	if err != nil {
		return models.LocationRef{}, err
	}
	if p != nil && p.LastLoc != nil && !p.LastLoc.IsZero() {
		return *p.LastLoc, nil
	}
	return models.LocationRef{Kind: models.KindDepot, ID: s.cfg.DefaultDepotID}, nil
}

// MoveViaScan is the single composed operation the scan screen invokes:
// record a movement from the pallet's inferred origin to the declared
// destination, then update the pallet's last known location. The pallet
// must stay untouched when the movement is rejected, so the update runs
// strictly after validation and the ledger write.
func (s *stockService) MoveViaScan(ctx context.Context, input ScanMoveInput) (*ScanMoveResult, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	from, err := s.ResolveOrigin(ctx, code)
	if err != nil {
		return nil, err
	}

	move, err := s.RecordMovement(ctx, MovementInput{
		PalletType: input.PalletType,
		Quantity:   input.Quantity,
		From:       from,
		To:         input.To,
		Note:       input.Note,
	})
	if err != nil {
		return nil, err
	}

	palletType := strings.TrimSpace(input.PalletType)
	to := input.To
	if _, err := s.pallets.Upsert(ctx, models.PalletPatch{
		Code:    code,
		Type:    &palletType,
		LastLoc: &to,
	}); err != nil {
		return nil, err
	}

	return &ScanMoveResult{From: from, To: input.To, Movement: move}, nil
}

// FoldBalances derives balance rows from scratch by folding the whole
// ledger: -qty at each movement's source, +qty at its destination.
// Addition commutes, so the iteration order is irrelevant. Rows are
// returned in a stable (kind, id, type) order.
func FoldBalances(moves []models.StockMovement) []models.BalanceRow {
	totals := map[models.BalanceKey]float64{}
	for _, m := range moves {
		totals[models.BalanceKey{Kind: m.From.Kind, LocationID: m.From.ID, PalletType: m.PalletType}] -= m.Quantity
		totals[models.BalanceKey{Kind: m.To.Kind, LocationID: m.To.ID, PalletType: m.PalletType}] += m.Quantity
	}

	rows := make([]models.BalanceRow, 0, len(totals))
	for key, qty := range totals {
		rows = append(rows, models.BalanceRow{
			Kind:       key.Kind,
			LocationID: key.LocationID,
			PalletType: key.PalletType,
			Quantity:   qty,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		return a.PalletType < b.PalletType
	})
	return rows
}

func validateMovement(input MovementInput) error {
	if input.PalletType == "" {
		return ErrPalletTypeRequired
	}
	if math.IsNaN(input.Quantity) || math.IsInf(input.Quantity, 0) || input.Quantity <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidQuantity, input.Quantity)
	}
	if input.From.IsZero() || !input.From.Kind.Valid() {
		return ErrInvalidSource
	}
	if input.To.IsZero() || !input.To.Kind.Valid() {
		return ErrInvalidDestination
	}
	if input.From.Equal(input.To) {
		return ErrSameLocation
	}
	return nil
}

func applyDelta(rows []models.BalanceRow, ref models.LocationRef, palletType string, delta float64) []models.BalanceRow {
	key := models.BalanceKey{Kind: ref.Kind, LocationID: ref.ID, PalletType: palletType}
	for i, row := range rows {
		if row.Key() == key {
			rows[i].Quantity += delta
			return rows
		}
	}
	return append(rows, models.BalanceRow{
		Kind:       ref.Kind,
		LocationID: ref.ID,
		PalletType: palletType,
		Quantity:   delta,
	})
}
