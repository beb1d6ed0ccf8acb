package generation

import "errors"

// Errors returned by generation services and the coordinator.
var (
	// ErrSourceNotFound is returned when the requested book or module set does
	// not exist in the content store. Terminal: no provider is contacted.
	ErrSourceNotFound = errors.New("content source not found")

	// ErrUnsupportedPair is returned when no service handles the requested
	// skill and format combination.
	ErrUnsupportedPair = errors.New("unsupported skill/format pair")

	// ErrNoValidItems is returned when the provider responded but no item
	// survived normalization.
	ErrNoValidItems = errors.New("no valid items in provider response")
)
