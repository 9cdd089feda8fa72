// Package pallettrack is a pallet-logistics tracking core: catalogs of
// drivers, shops and depots, a pallet registry, a bounded scan history
// and an append-only stock ledger with derived balances. Everything is
// persisted through an injected key-value Store; there is no server and
// no concurrent writer, each operation is one synchronous
// read-modify-write against the store.
package pallettrack

import (
	"context"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"pallettrack/internal/config"
	"pallettrack/internal/export"
	"pallettrack/internal/models"
	"pallettrack/internal/repositories"
	"pallettrack/internal/services"
	"pallettrack/internal/storage"
	"pallettrack/pkg/database"
)

// Re-exported domain types, so consumers never import internal packages.
type (
	Config        = config.Config
	StorageConfig = config.StorageConfig

	LocationKind   = models.LocationKind
	LocationRef    = models.LocationRef
	Location       = models.Location
	LocationPatch  = models.LocationPatch
	Pallet         = models.Pallet
	PalletPatch    = models.PalletPatch
	GeoFix         = models.GeoFix
	ScanSource     = models.ScanSource
	ScanEvent      = models.ScanEvent
	StockMovement  = models.StockMovement
	BalanceRow     = models.BalanceRow
	MovementFilter = models.MovementFilter

	LocationService = services.LocationService
	PalletService   = services.PalletService
	ScanService     = services.ScanService
	StockService    = services.StockService
	LocationInput   = services.LocationInput
	ScanInput       = services.ScanInput
	MovementInput   = services.MovementInput
	ScanMoveInput   = services.ScanMoveInput
	ScanMoveResult  = services.ScanMoveResult

	Store = storage.Store
)

const (
	KindDepot  = models.KindDepot
	KindShop   = models.KindShop
	KindDriver = models.KindDriver

	SourceQR     = models.SourceQR
	SourceManual = models.SourceManual
)

// Validation and lookup sentinels, for errors.Is checks at call sites.
var (
	ErrNameRequired       = services.ErrNameRequired
	ErrLimitExceeded      = services.ErrLimitExceeded
	ErrNotFound           = services.ErrNotFound
	ErrUnknownKind        = services.ErrUnknownKind
	ErrCodeRequired       = services.ErrCodeRequired
	ErrPalletTypeRequired = services.ErrPalletTypeRequired
	ErrInvalidQuantity    = services.ErrInvalidQuantity
	ErrInvalidSource      = services.ErrInvalidSource
	ErrInvalidDestination = services.ErrInvalidDestination
	ErrSameLocation       = services.ErrSameLocation
)

// DefaultConfig returns the configuration matching the observed source
// system; LoadConfig layers environment variables (and .env) on top.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) { return config.Load() }

// NewMemoryStore returns the in-memory storage backend, handy for tests
// and ephemeral use.
func NewMemoryStore() Store { return storage.NewMemoryStore() }

// NewFileStore returns the file-backed storage backend rooted at dir.
func NewFileStore(dir string) (Store, error) { return storage.NewFileStore(dir) }

// Tracker bundles the four services over one storage backend.
type Tracker struct {
	Locations LocationService
	Pallets   PalletService
	Scans     ScanService
	Stock     StockService

	cfg *Config
}

// New wires the tracker over an explicit store. The clock defaults to
// the wall clock; pass a fake in tests.
func New(cfg *Config, store Store, logger zerolog.Logger, clock clockwork.Clock) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	locationRepo := repositories.NewLocationRepository(store, logger, cfg.Namespace)
	palletRepo := repositories.NewPalletRepository(store, logger, cfg.Namespace)
	scanRepo := repositories.NewScanRepository(store, logger, cfg.Namespace)
	stockRepo := repositories.NewStockRepository(store, logger, cfg.Namespace)

	pallets := services.NewPalletService(palletRepo, cfg, clock)

	return &Tracker{
		Locations: services.NewLocationService(locationRepo, cfg, clock),
		Pallets:   pallets,
		Scans:     services.NewScanService(scanRepo, pallets, cfg, clock),
		Stock:     services.NewStockService(stockRepo, pallets, cfg, clock),
		cfg:       cfg,
	}, nil
}

// Open builds the storage backend named by cfg.Storage and wires the
// tracker over it.
func Open(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store Store
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store = storage.NewMemoryStore()
	case config.BackendFile:
		fs, err := storage.NewFileStore(cfg.Storage.FileDir)
		if err != nil {
			return nil, err
		}
		store = fs
	case config.BackendRedis:
		store = storage.NewRedisStore(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, err
		}
		ps := storage.NewPostgresStore(pool)
		if err := ps.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = ps
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return New(cfg, store, logger, nil)
}

// MovementsCSV writes the movement ledger as CSV.
func (t *Tracker) MovementsCSV(ctx context.Context, w io.Writer) error {
	return export.Movements(ctx, t.Stock, t.Locations, w)
}

// BalancesCSV writes the current stock view as CSV.
func (t *Tracker) BalancesCSV(ctx context.Context, w io.Writer) error {
	return export.Balances(ctx, t.Stock, t.Locations, w)
}

// PalletsCSV writes the pallet catalog as CSV.
func (t *Tracker) PalletsCSV(ctx context.Context, w io.Writer) error {
	return export.Pallets(ctx, t.Pallets, t.Locations, w)
}

// CatalogCSV writes one location catalog as CSV.
func (t *Tracker) CatalogCSV(ctx context.Context, kind LocationKind, w io.Writer) error {
	return export.Catalog(ctx, t.Locations, kind, w)
}

// MovementsPDF renders the movement ledger as a printable report.
func (t *Tracker) MovementsPDF(ctx context.Context) ([]byte, error) {
	return export.MovementsPDF(ctx, t.Stock, t.Locations)
}
