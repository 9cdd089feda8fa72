package models

import "time"

// ScanEvent is one append-only history entry recording that a pallet
// code was read, via camera or typed by hand. Events are audit data;
// they never alter balances on their own.
type ScanEvent struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Timestamp time.Time    `json:"ts"`
	Fix       *GeoFix      `json:"fix,omitempty"`
	Source    ScanSource   `json:"source"`
	Declared  *LocationRef `json:"declared,omitempty"`

	PalletType string  `json:"pallet_type,omitempty"`
	Quantity   float64 `json:"qty,omitempty"`
}
