package services

import "errors"

// Error taxonomy of the tracker. Validation errors are surfaced
// synchronously and never partially applied; ErrNotFound is benign for
// update/remove paths; storage trouble never reaches callers (the
// repository layer degrades instead).
var (
	// Catalog errors.
	ErrNameRequired  = errors.New("name is required")
	ErrLimitExceeded = errors.New("catalog limit reached")
	ErrNotFound      = errors.New("not found")
	ErrUnknownKind   = errors.New("unknown location kind")

	// Pallet and scan errors.
	ErrCodeRequired = errors.New("pallet code is required")

	// Movement validation, checked in this order.
	ErrPalletTypeRequired = errors.New("pallet type is required")
	ErrInvalidQuantity    = errors.New("quantity must be a positive finite number")
	ErrInvalidSource      = errors.New("source location is incomplete")
	ErrInvalidDestination = errors.New("destination location is incomplete")
	ErrSameLocation       = errors.New("source and destination are the same location")
)
