package services

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"

	"pallettrack/internal/config"
	"pallettrack/internal/models"
	"pallettrack/internal/repositories"
)

// PalletService maintains the pallet catalog. Pallets are created
// implicitly on first scan via Upsert and matched case-insensitively by
// primary or alternate code.
type PalletService interface {
	List(ctx context.Context) ([]models.Pallet, error)
	FindByCode(ctx context.Context, code string) (*models.Pallet, error)
	Upsert(ctx context.Context, patch models.PalletPatch) (*models.Pallet, error)
	Remove(ctx context.Context, id string) error
	IsLost(p models.Pallet) bool
	Missing(ctx context.Context) ([]models.Pallet, error)
}

type palletService struct {
	repo  repositories.PalletRepository
	cfg   *config.Config
	clock clockwork.Clock
}

func NewPalletService(repo repositories.PalletRepository, cfg *config.Config, clock clockwork.Clock) PalletService {
	return &palletService{repo: repo, cfg: cfg, clock: clock}
}

func (s *palletService) List(ctx context.Context) ([]models.Pallet, error) {
	return s.repo.List(ctx), nil
}

// FindByCode matches the primary code first, then the alternate code,
// both case-insensitively. Returns (nil, nil) when no pallet matches.
func (s *palletService) FindByCode(ctx context.Context, code string) (*models.Pallet, error) {
	norm := normalizeCode(code)
	if norm == "" {
		return nil, nil
	}
	for _, p := range s.repo.List(ctx) {
		if normalizeCode(p.Code) == norm || (p.AltCode != "" && normalizeCode(p.AltCode) == norm) {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

// Upsert merges the patch into the pallet matching its code, or creates
// a new pallet. Nil patch fields never overwrite stored values, and the
// canonical code is immutable: a later patch spelling the code in a
// different case does not rewrite it.
func (s *palletService) Upsert(ctx context.Context, patch models.PalletPatch) (*models.Pallet, error) {
	code := strings.TrimSpace(patch.Code)
	if code == "" {
		return nil, ErrCodeRequired
	}
	norm := strings.ToLower(code)

	items := s.repo.List(ctx)
	idx := -1
	for i, p := range items {
		if normalizeCode(p.Code) == norm || (p.AltCode != "" && normalizeCode(p.AltCode) == norm) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		p := items[idx]
		applyPalletPatch(&p, patch)
		items[idx] = p
		s.repo.Save(ctx, items)
		return &p, nil
	}

	p := models.Pallet{
		ID:   newID("pallet"),
		Code: code,
	}
	applyPalletPatch(&p, patch)
	items = append([]models.Pallet{p}, items...)
	s.repo.Save(ctx, items)
	return &p, nil
}

func (s *palletService) Remove(ctx context.Context, id string) error {
	items := s.repo.List(ctx)
	kept := items[:0]
	for _, p := range items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	s.repo.Save(ctx, kept)
	return nil
}

// IsLost classifies a pallet as lost when it was never seen or its last
// sighting is older than the configured window. Pure function of the
// clock; never persisted.
func (s *palletService) IsLost(p models.Pallet) bool {
	if p.LastSeen == nil {
		return true
	}
	return s.clock.Now().Sub(*p.LastSeen) > s.cfg.LostAfter
}

// Missing lists the pallets currently classified as lost.
func (s *palletService) Missing(ctx context.Context) ([]models.Pallet, error) {
	var lost []models.Pallet
	for _, p := range s.repo.List(ctx) {
		if s.IsLost(p) {
			lost = append(lost, p)
		}
	}
	return lost, nil
}

func applyPalletPatch(p *models.Pallet, patch models.PalletPatch) {
	if patch.AltCode != nil {
		p.AltCode = strings.TrimSpace(*patch.AltCode)
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.LastSeen != nil {
		p.LastSeen = patch.LastSeen
	}
	if patch.LastFix != nil {
		p.LastFix = patch.LastFix
	}
	if patch.LastSource != nil {
		p.LastSource = *patch.LastSource
	}
	if patch.LastLoc != nil {
		p.LastLoc = patch.LastLoc
	}
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
