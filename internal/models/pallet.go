package models

import "time"

// ScanSource tells how a pallet code entered the system.
type ScanSource string

const (
	SourceQR     ScanSource = "qr"
	SourceManual ScanSource = "manual"
)

// GeoFix is an optional GPS reading attached to scans and pallets.
type GeoFix struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// Pallet is a physical pallet tracked by a normalized code. Identity is
// the code (matched case-insensitively, optionally via AltCode); the
// last-known state fields are denormalized from scans and movements.
type Pallet struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	AltCode string `json:"alt_code,omitempty"`
	Type    string `json:"type,omitempty"`
	Notes   string `json:"notes,omitempty"`

	LastSeen   *time.Time   `json:"last_seen,omitempty"`
	LastFix    *GeoFix      `json:"last_fix,omitempty"`
	LastSource ScanSource   `json:"last_source,omitempty"`
	LastLoc    *LocationRef `json:"last_loc,omitempty"`
}

// PalletPatch is the merge-upsert input keyed by Code. Nil fields never
// overwrite stored values; the canonical Code is immutable once a pallet
// exists, even if a later patch spells it differently.
type PalletPatch struct {
	Code       string       `json:"code"`
	AltCode    *string      `json:"alt_code,omitempty"`
	Type       *string      `json:"type,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
	LastSeen   *time.Time   `json:"last_seen,omitempty"`
	LastFix    *GeoFix      `json:"last_fix,omitempty"`
	LastSource *ScanSource  `json:"last_source,omitempty"`
	LastLoc    *LocationRef `json:"last_loc,omitempty"`
}
