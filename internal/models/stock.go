package models

import "time"

// StockMovement is an immutable ledger entry moving a quantity of one
// pallet type between two locations. Movements are the sole source of
// truth for balances.
type StockMovement struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"ts"`
	PalletType string      `json:"pallet_type"`
	Quantity   float64     `json:"qty"`
	From       LocationRef `json:"from"`
	To         LocationRef `json:"to"`
	Note       string      `json:"note,omitempty"`
}

// BalanceKey identifies one (location, pallet type) balance row.
type BalanceKey struct {
	Kind       LocationKind
	LocationID string
	PalletType string
}

// BalanceRow is a derived current-quantity figure for one location and
// pallet type. A missing row reads as zero; negative quantities are
// valid and mean stock moved out of a location whose starting inventory
// was never recorded.
type BalanceRow struct {
	Kind       LocationKind `json:"kind"`
	LocationID string       `json:"location_id"`
	PalletType string       `json:"pallet_type"`
	Quantity   float64      `json:"qty"`
}

// Key returns the row's identity.
func (b BalanceRow) Key() BalanceKey {
	return BalanceKey{Kind: b.Kind, LocationID: b.LocationID, PalletType: b.PalletType}
}

// MovementFilter narrows Movements queries for history views. Zero
// fields are ignored; Location matches either end of a movement.
type MovementFilter struct {
	PalletType string
	Location   *LocationRef
	Limit      int
}
