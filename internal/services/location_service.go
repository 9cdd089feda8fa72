package services

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jonboulle/clockwork"

	"pallettrack/internal/config"
	"pallettrack/internal/models"
	"pallettrack/internal/repositories"
)

// LocationInput is the payload for creating a catalog entry.
type LocationInput struct {
	Name    string
	Code    string
	Phone   string
	Address string
	Lat     *float64
	Lng     *float64
	Notes   string
}

// LocationService maintains the three name-addressable catalogs and
// resolves ledger references to display names.
type LocationService interface {
	List(ctx context.Context, kind models.LocationKind) ([]models.Location, error)
	Add(ctx context.Context, kind models.LocationKind, input LocationInput) (*models.Location, error)
	Update(ctx context.Context, kind models.LocationKind, id string, patch models.LocationPatch) error
	Remove(ctx context.Context, kind models.LocationKind, id string) error
	ResolveName(ctx context.Context, ref models.LocationRef) string
	DefaultDepot() models.Location
	DepotOptions(ctx context.Context) ([]models.Location, error)
}

type locationService struct {
	repo  repositories.LocationRepository
	cfg   *config.Config
	clock clockwork.Clock
}

func NewLocationService(repo repositories.LocationRepository, cfg *config.Config, clock clockwork.Clock) LocationService {
	return &locationService{repo: repo, cfg: cfg, clock: clock}
}

func (s *locationService) List(ctx context.Context, kind models.LocationKind) ([]models.Location, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s.repo.List(ctx, kind), nil
}

func (s *locationService) Add(ctx context.Context, kind models.LocationKind, input LocationInput) (*models.Location, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validation.ValidateStruct(&input,
		validation.Field(&input.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&input.Code, validation.Length(0, 64)),
		validation.Field(&input.Phone, validation.Length(0, 64)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNameRequired, err)
	}

	items := s.repo.List(ctx, kind)
	if limit := s.capFor(kind); limit > 0 && len(items) >= limit {
		return nil, fmt.Errorf("%w: %s catalog holds at most %d entries", ErrLimitExceeded, strings.ToLower(string(kind)), limit)
	}

	now := s.clock.Now()
	loc := models.Location{
		ID:        newID(idPrefix(kind)),
		Kind:      kind,
		Name:      input.Name,
		Code:      strings.TrimSpace(input.Code),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		Lat:       input.Lat,
		Lng:       input.Lng,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items = append([]models.Location{loc}, items...)
	s.repo.Save(ctx, kind, items)
	return &loc, nil
}

func (s *locationService) Update(ctx context.Context, kind models.LocationKind, id string, patch models.LocationPatch) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	items := s.repo.List(ctx, kind)
	idx := -1
	for i, item := range items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, strings.ToLower(string(kind)), id)
	}

	item := items[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return ErrNameRequired
		}
		item.Name = name
	}
	if patch.Code != nil {
		item.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Phone != nil {
		item.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Address != nil {
		item.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.Lat != nil {
		item.Lat = patch.Lat
	}
	if patch.Lng != nil {
		item.Lng = patch.Lng
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	item.UpdatedAt = s.clock.Now()

	items[idx] = item
	s.repo.Save(ctx, kind, items)
	return nil
}

func (s *locationService) Remove(ctx context.Context, kind models.LocationKind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	items := s.repo.List(ctx, kind)
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		// Removing an id that is already gone is not an error.
		return nil
	}
	s.repo.Save(ctx, kind, kept)
	return nil
}

// ResolveName maps a ledger reference to a display name at read time.
// Unknown ids fall back to the raw id so history stays renderable after
// a catalog entry is removed.
func (s *locationService) ResolveName(ctx context.Context, ref models.LocationRef) string {
	if ref.IsZero() {
		return ""
	}
	if ref.Kind == models.KindDepot && ref.ID == s.cfg.DefaultDepotID {
		return s.cfg.DefaultDepotName
	}
	for _, item := range s.repo.List(ctx, ref.Kind) {
		if item.ID == ref.ID {
			return item.Name
		}
	}
	return ref.ID
}

// DefaultDepot returns the synthetic depot every untracked pallet is
// assumed to originate from. It exists even when no depot record was
// ever created.
func (s *locationService) DefaultDepot() models.Location {
	return models.Location{
		ID:   s.cfg.DefaultDepotID,
		Kind: models.KindDepot,
		Name: s.cfg.DefaultDepotName,
	}
}

// DepotOptions lists the default depot followed by the stored depots,
// the choice set offered when declaring a scan destination.
func (s *locationService) DepotOptions(ctx context.Context) ([]models.Location, error) {
	depots := s.repo.List(ctx, models.KindDepot)
	return append([]models.Location{s.DefaultDepot()}, depots...), nil
}

func (s *locationService) capFor(kind models.LocationKind) int {
	switch kind {
	case models.KindDriver:
		return s.cfg.MaxDrivers
	case models.KindShop:
		return s.cfg.MaxShops
	case models.KindDepot:
		return s.cfg.MaxDepots
	default:
		return 0
	}
}
