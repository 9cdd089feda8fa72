package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pallettrack/internal/config"
	"pallettrack/internal/models"
	"pallettrack/internal/repositories"
	"pallettrack/internal/storage"
)

var (
	depot   = models.LocationRef{Kind: models.KindDepot, ID: "dep_1"}
	shopA   = models.LocationRef{Kind: models.KindShop, ID: "shop_a"}
	driver1 = models.LocationRef{Kind: models.KindDriver, ID: "drv_1"}
)

type StockServiceTestSuite struct {
	suite.Suite
	cfg     *config.Config
	clock   *clockwork.FakeClock
	pallets PalletService
	service StockService
}

func (suite *StockServiceTestSuite) SetupTest() {
	suite.cfg = config.Default()
	suite.clock = clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	store := storage.NewMemoryStore()
	log := zerolog.Nop()
	suite.pallets = NewPalletService(repositories.NewPalletRepository(store, log, suite.cfg.Namespace), suite.cfg, suite.clock)
	suite.service = NewStockService(repositories.NewStockRepository(store, log, suite.cfg.Namespace), suite.pallets, suite.cfg, suite.clock)
}

func TestStockServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}

func (suite *StockServiceTestSuite) record(palletType string, qty float64, from, to models.LocationRef) *models.StockMovement {
	move, err := suite.service.RecordMovement(context.Background(), MovementInput{
		PalletType: palletType,
		Quantity:   qty,
		From:       from,
		To:         to,
	})
	require.NoError(suite.T(), err)
	return move
}

func (suite *StockServiceTestSuite) TestRecordMovement_Validation() {
	ctx := context.Background()

	_, err := suite.service.RecordMovement(ctx, MovementInput{PalletType: "  ", Quantity: 1, From: depot, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrPalletTypeRequired)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: 0, From: depot, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: -5, From: depot, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: math.NaN(), From: depot, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: math.Inf(1), From: depot, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: 1, From: models.LocationRef{Kind: models.KindDepot}, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrInvalidSource)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: 1, From: depot, To: models.LocationRef{ID: "shop_a"}})
	assert.ErrorIs(suite.T(), err, ErrInvalidDestination)

	_, err = suite.service.RecordMovement(ctx, MovementInput{PalletType: "EUR", Quantity: 1, From: depot, To: depot})
	assert.ErrorIs(suite.T(), err, ErrSameLocation)

	moves, err := suite.service.Movements(ctx, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), moves, "rejected movements never reach the ledger")
}

func (suite *StockServiceTestSuite) TestRecordMovement_AppliesBothDeltas() {
	ctx := context.Background()

	suite.record("EUR", 5, depot, shopA)
	suite.record("EUR", 2, shopA, driver1)

	fromDepot, err := suite.service.BalanceFor(ctx, depot, "EUR")
	assert.NoError(suite.T(), err)
	atShop, err := suite.service.BalanceFor(ctx, shopA, "EUR")
	assert.NoError(suite.T(), err)
	withDriver, err := suite.service.BalanceFor(ctx, driver1, "EUR")
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), -5.0, fromDepot, "negative balances are allowed, the depot had no seeded inventory")
	assert.Equal(suite.T(), 3.0, atShop)
	assert.Equal(suite.T(), 2.0, withDriver)
}

func (suite *StockServiceTestSuite) TestBalanceFor_MissingRowIsZero() {
	qty, err := suite.service.BalanceFor(context.Background(), shopA, "CHEP")
	assert.NoError(suite.T(), err)
	assert.Zero(suite.T(), qty)
}

func (suite *StockServiceTestSuite) TestMovements_MostRecentFirst() {
	ctx := context.Background()

	first := suite.record("EUR", 1, depot, shopA)
	suite.clock.Advance(time.Minute)
	second := suite.record("EUR", 2, depot, shopA)

	moves, err := suite.service.Movements(ctx, nil)
	assert.NoError(suite.T(), err)
	require.Len(suite.T(), moves, 2)
	assert.Equal(suite.T(), second.ID, moves[0].ID)
	assert.Equal(suite.T(), first.ID, moves[1].ID)
}

func (suite *StockServiceTestSuite) TestMovements_Filter() {
	ctx := context.Background()

	suite.record("EUR", 1, depot, shopA)
	suite.record("CHEP", 2, depot, driver1)
	suite.record("EUR", 3, shopA, driver1)

	byType, err := suite.service.Movements(ctx, &models.MovementFilter{PalletType: "eur"})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), byType, 2)

	byLocation, err := suite.service.Movements(ctx, &models.MovementFilter{Location: &driver1})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), byLocation, 2)

	both, err := suite.service.Movements(ctx, &models.MovementFilter{PalletType: "EUR", Location: &driver1})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), both, 1)

	limited, err := suite.service.Movements(ctx, &models.MovementFilter{Limit: 1})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), limited, 1)
}

func (suite *StockServiceTestSuite) TestLedgerBound() {
	suite.cfg.MovementLimit = 5

	var last *models.StockMovement
	for i := 0; i < 7; i++ {
		last = suite.record("EUR", float64(i+1), depot, shopA)
	}

	moves, err := suite.service.Movements(context.Background(), nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), moves, 5)
	assert.Equal(suite.T(), last.ID, moves[0].ID, "newest entries are kept")
}

// The maintained view and the full fold must agree for any sequence of
// valid movements.
func (suite *StockServiceTestSuite) TestIncrementalMatchesFold() {
	ctx := context.Background()

	refs := []models.LocationRef{
		depot, shopA, driver1,
		{Kind: models.KindShop, ID: "shop_b"},
		{Kind: models.KindDriver, ID: "drv_2"},
		{Kind: models.KindDepot, ID: "dep_default"},
	}
	types := []string{"EUR", "CHEP", "LPR"}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		from := refs[rng.Intn(len(refs))]
		to := refs[rng.Intn(len(refs))]
		if from.Equal(to) {
			continue
		}
		suite.record(types[rng.Intn(len(types))], float64(rng.Intn(20)+1), from, to)
	}

	moves, err := suite.service.Movements(ctx, nil)
	require.NoError(suite.T(), err)
	folded := FoldBalances(moves)

	maintained, err := suite.service.Balances(ctx)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), balanceMap(folded), balanceMap(maintained))
}

// Every unit leaving a location arrives at another: per pallet type the
// signed deltas across all locations always sum to zero.
func (suite *StockServiceTestSuite) TestConservation() {
	ctx := context.Background()

	suite.record("EUR", 5, depot, shopA)
	suite.record("EUR", 2, shopA, driver1)
	suite.record("CHEP", 7, driver1, depot)
	suite.record("EUR", 1, driver1, depot)

	rows, err := suite.service.Balances(ctx)
	require.NoError(suite.T(), err)

	totals := map[string]float64{}
	for _, row := range rows {
		totals[row.PalletType] += row.Quantity
	}
	for palletType, total := range totals {
		assert.Zero(suite.T(), total, "pallet type %s does not balance", palletType)
	}
}

func (suite *StockServiceTestSuite) TestRebuildBalances() {
	ctx := context.Background()

	suite.record("EUR", 5, depot, shopA)
	suite.record("EUR", 2, shopA, driver1)

	before, err := suite.service.Balances(ctx)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.service.RebuildBalances(ctx))

	after, err := suite.service.Balances(ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), balanceMap(before), balanceMap(after))
}

func (suite *StockServiceTestSuite) TestClearLedger() {
	ctx := context.Background()

	suite.record("EUR", 5, depot, shopA)
	require.NoError(suite.T(), suite.service.ClearLedger(ctx))

	moves, err := suite.service.Movements(ctx, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), moves)

	rows, err := suite.service.Balances(ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), rows)
}

func (suite *StockServiceTestSuite) TestResolveOrigin_DefaultsToMainDepot() {
	ctx := context.Background()

	origin, err := suite.service.ResolveOrigin(ctx, "NEVER-SEEN")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.LocationRef{Kind: models.KindDepot, ID: suite.cfg.DefaultDepotID}, origin)
}

func (suite *StockServiceTestSuite) TestResolveOrigin_UsesLastKnownLocation() {
	ctx := context.Background()

	loc := shopA
	_, err := suite.pallets.Upsert(ctx, models.PalletPatch{Code: "PAL-1", LastLoc: &loc})
	require.NoError(suite.T(), err)

	origin, err := suite.service.ResolveOrigin(ctx, "pal-1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), shopA, origin)
}

func (suite *StockServiceTestSuite) TestMoveViaScan_NewPallet() {
	ctx := context.Background()

	dest := models.LocationRef{Kind: models.KindShop, ID: "shop-9"}
	result, err := suite.service.MoveViaScan(ctx, ScanMoveInput{
		Code:       "PAL-1",
		PalletType: "EUR/EPAL",
		Quantity:   3,
		To:         dest,
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.LocationRef{Kind: models.KindDepot, ID: suite.cfg.DefaultDepotID}, result.From)
	assert.Equal(suite.T(), dest, result.To)
	assert.Equal(suite.T(), 3.0, result.Movement.Quantity)

	p, err := suite.pallets.FindByCode(ctx, "PAL-1")
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), p)
	assert.Equal(suite.T(), models.KindShop, p.LastLoc.Kind)
	assert.Equal(suite.T(), "shop-9", p.LastLoc.ID)
	assert.Equal(suite.T(), "EUR/EPAL", p.Type)
}

func (suite *StockServiceTestSuite) TestMoveViaScan_ChainsOrigins() {
	ctx := context.Background()

	_, err := suite.service.MoveViaScan(ctx, ScanMoveInput{Code: "PAL-1", PalletType: "EUR", Quantity: 1, To: shopA})
	require.NoError(suite.T(), err)

	result, err := suite.service.MoveViaScan(ctx, ScanMoveInput{Code: "PAL-1", PalletType: "EUR", Quantity: 1, To: driver1})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), shopA, result.From, "second scan starts from the first scan's destination")
}

func (suite *StockServiceTestSuite) TestMoveViaScan_ValidationLeavesPalletUntouched() {
	ctx := context.Background()

	_, err := suite.service.MoveViaScan(ctx, ScanMoveInput{
		Code:       "PAL-1",
		PalletType: "EUR",
		Quantity:   0,
		To:         shopA,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)

	p, err := suite.pallets.FindByCode(ctx, "PAL-1")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), p, "a rejected movement must not create or update the pallet")

	moves, err := suite.service.Movements(ctx, nil)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), moves)
}

func (suite *StockServiceTestSuite) TestMoveViaScan_EmptyCodeRejected() {
	_, err := suite.service.MoveViaScan(context.Background(), ScanMoveInput{PalletType: "EUR", Quantity: 1, To: shopA})
	assert.ErrorIs(suite.T(), err, ErrCodeRequired)
}

func TestFoldBalances_Empty(t *testing.T) {
	assert.Empty(t, FoldBalances(nil))
}

func TestFoldBalances_OrderIndependent(t *testing.T) {
	moves := []models.StockMovement{
		{PalletType: "EUR", Quantity: 5, From: depot, To: shopA},
		{PalletType: "EUR", Quantity: 2, From: shopA, To: driver1},
		{PalletType: "CHEP", Quantity: 1, From: driver1, To: depot},
	}
	reversed := []models.StockMovement{moves[2], moves[1], moves[0]}

	assert.Equal(t, FoldBalances(moves), FoldBalances(reversed))
}

func balanceMap(rows []models.BalanceRow) map[models.BalanceKey]float64 {
	out := map[models.BalanceKey]float64{}
	for _, row := range rows {
		if row.Quantity != 0 {
			out[row.Key()] = row.Quantity
		}
	}
	return out
}

func TestBalanceKeyString(t *testing.T) {
	// Guards the map key against accidental field reordering: two rows
	// for the same location and type must collide.
	a := models.BalanceRow{Kind: models.KindShop, LocationID: "shop_1", PalletType: "EUR"}
	b := models.BalanceRow{Kind: models.KindShop, LocationID: "shop_1", PalletType: "EUR", Quantity: 9}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, fmt.Sprintf("%v", a.Key()), fmt.Sprintf("%v", b.Key()))
}
