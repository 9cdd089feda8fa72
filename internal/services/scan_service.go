package services

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"pallettrack/internal/config"
	"pallettrack/internal/models"
	"pallettrack/internal/repositories"
)

// ScanInput describes one scan, from the camera or typed by hand. A
// zero Timestamp means "now"; the geo fix is optional because the
// location prompt may fail or be dismissed without blocking the scan.
type ScanInput struct {
	Code       string
	Source     models.ScanSource
	Timestamp  time.Time
	Fix        *models.GeoFix
	Declared   *models.LocationRef
	PalletType string
	Quantity   float64
}

// ScanService keeps the bounded, most-recent-first scan history and the
// pallet last-seen state that every scan refreshes.
type ScanService interface {
	Record(ctx context.Context, input ScanInput) (*models.ScanEvent, error)
	List(ctx context.Context) ([]models.ScanEvent, error)
	Clear(ctx context.Context) error
	LastScan(ctx context.Context) (string, error)
}

type scanService struct {
	repo    repositories.ScanRepository
	pallets PalletService
	cfg     *config.Config
	clock   clockwork.Clock
}

func NewScanService(repo repositories.ScanRepository, pallets PalletService, cfg *config.Config, clock clockwork.Clock) ScanService {
	return &scanService{repo: repo, pallets: pallets, cfg: cfg, clock: clock}
}

// Record appends the event (assigning id and timestamp), truncates the
// history to its bound, remembers the code for prefill and refreshes
// the pallet's last-seen state. The truncation is a deliberate guard
// against unbounded growth: oldest entries are dropped silently.
func (s *scanService) Record(ctx context.Context, input ScanInput) (*models.ScanEvent, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now()
	}
	source := input.Source
	if source == "" {
		source = models.SourceManual
	}

	ev := models.ScanEvent{
		ID:         newID("scan"),
		Code:       code,
		Timestamp:  ts,
		Fix:        input.Fix,
		Source:     source,
		Declared:   input.Declared,
		PalletType: strings.TrimSpace(input.PalletType),
		Quantity:   input.Quantity,
	}

	items := s.repo.List(ctx)
	items = append([]models.ScanEvent{ev}, items...)
	if len(items) > s.cfg.HistoryLimit {
		items = items[:s.cfg.HistoryLimit]
	}
	s.repo.Save(ctx, items)
	s.repo.SetLastScan(ctx, code)

	patch := models.PalletPatch{
		Code:       code,
		LastSeen:   &ev.Timestamp,
		LastFix:    ev.Fix,
		LastSource: &ev.Source,
	}
	if ev.PalletType != "" {
		patch.Type = &ev.PalletType
	}
	if _, err := s.pallets.Upsert(ctx, patch); err != nil {
		return nil, err
	}

	return &ev, nil
}

func (s *scanService) List(ctx context.Context) ([]models.ScanEvent, error) {
	return s.repo.List(ctx), nil
}

func (s *scanService) Clear(ctx context.Context) error {
	s.repo.Save(ctx, nil)
	return nil
}

func (s *scanService) LastScan(ctx context.Context) (string, error) {
	return s.repo.LastScan(ctx), nil
}
