package models

import "time"

// LocationKind discriminates the three catalogs a pallet can sit at.
type LocationKind string

const (
	KindDepot  LocationKind = "DEPOT"
	KindShop   LocationKind = "SHOP"
	KindDriver LocationKind = "DRIVER"
)

// Valid reports whether k is one of the three known kinds.
func (k LocationKind) Valid() bool {
	return k == KindDepot || k == KindShop || k == KindDriver
}

// LocationRef identifies a depot, shop or driver without owning it.
// The ledger stores refs, never copies, so renaming a location does not
// rewrite history.
type LocationRef struct {
	Kind LocationKind `json:"kind"`
	ID   string       `json:"id"`
}

// IsZero reports whether either half of the ref is missing.
func (r LocationRef) IsZero() bool {
	return r.Kind == "" || r.ID == ""
}

// Equal compares refs by kind and id.
func (r LocationRef) Equal(other LocationRef) bool {
	return r.Kind == other.Kind && r.ID == other.ID
}

// Location is one entry of a per-kind catalog. Shops carry an optional
// short code, drivers a phone number; unused fields stay empty for the
// other kinds.
type Location struct {
	ID        string       `json:"id"`
	Kind      LocationKind `json:"kind"`
	Name      string       `json:"name"`
	Code      string       `json:"code,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	Lat       *float64     `json:"lat,omitempty"`
	Lng       *float64     `json:"lng,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Ref returns the reference identifying this location.
func (l Location) Ref() LocationRef {
	return LocationRef{Kind: l.Kind, ID: l.ID}
}

// LocationPatch carries partial updates for a location. Nil fields keep
// the stored value.
type LocationPatch struct {
	Name    *string  `json:"name,omitempty"`
	Code    *string  `json:"code,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Address *string  `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Notes   *string  `json:"notes,omitempty"`
}
