// Package content integrates the remote LMS content store: a read-only
// client for book/module metadata and a resolver that assembles the cached
// MetadataContext used to ground generation prompts.
package content

import (
	"context"
	"errors"
)

// Errors the content store client translates vendor responses into.
var (
	// ErrNotFound is returned when a book or module does not exist.
	ErrNotFound = errors.New("content not found")

	// ErrNotReady is returned when the content exists but its metadata
	// pipeline has not finished indexing it yet.
	ErrNotReady = errors.New("content not ready")

	// ErrUnauthorized is returned when the store rejects the client's
	// credentials.
	ErrUnauthorized = errors.New("content store rejected credentials")

	// ErrUnavailable is returned for connection failures and store-side
	// errors.
	ErrUnavailable = errors.New("content store unavailable")
)

// ModuleMetadata is one module's slice of the book metadata payload.
type ModuleMetadata struct {
	ModuleID int64    `json:"module_id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Topics   []string `json:"topics"`
}

// BookMetadata is the book-level metadata payload.
type BookMetadata struct {
	BookID          int64            `json:"book_id"`
	Title           string           `json:"title"`
	Language        string           `json:"language"`
	DifficultyLevel string           `json:"difficulty_level"`
	Modules         []ModuleMetadata `json:"modules"`
}

// Store is the read-only content store contract. Implementations must map
// their transport errors onto this package's sentinel errors.
type Store interface {
	// GetBookMetadata fetches book metadata restricted to the given modules.
	// An empty moduleIDs slice fetches all modules.
	GetBookMetadata(ctx context.Context, bookID int64, moduleIDs []int64) (*BookMetadata, error)

	// GetModuleVocabulary fetches the vocabulary words of one module.
	GetModuleVocabulary(ctx context.Context, bookID, moduleID int64) ([]string, error)

	// GetModuleGrammar fetches the grammar points of one module.
	GetModuleGrammar(ctx context.Context, bookID, moduleID int64) ([]string, error)
}
