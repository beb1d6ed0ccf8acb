package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownSkill is returned when a skill identifier is not recognized.
	ErrUnknownSkill = errors.New("unknown skill")

	// ErrUnknownFormat is returned when a format identifier is not recognized.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrUnknownDifficulty is returned when a difficulty value is not one of
	// auto, easy, medium or hard.
	ErrUnknownDifficulty = errors.New("unknown difficulty")

	// ErrNoContentSource is returned when a generation request carries neither
	// a book/module reference nor free text.
	ErrNoContentSource = errors.New("no content source provided")

	// ErrAmbiguousContentSource is returned when a generation request carries
	// both a book/module reference and free text.
	ErrAmbiguousContentSource = errors.New("exactly one content source must be provided")

	// ErrItemCountOutOfRange is returned when the requested item count is
	// outside the format's allowed bounds.
	ErrItemCountOutOfRange = errors.New("item count out of range for format")
)
