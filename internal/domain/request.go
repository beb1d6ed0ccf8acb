package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerationRequest describes a single skill/format generation call. It is
// created per call and discarded after use.
type GenerationRequest struct {
	TeacherID uuid.UUID
	Skill     Skill
	Format    Format

	// Exactly one content source must be populated: either BookID (with
	// optional ModuleIDs) or SourceText.
	BookID     int64
	ModuleIDs  []int64
	SourceText string

	ItemCount  int
	Difficulty Difficulty

	// Language overrides the content store's language when non-empty.
	Language string
}

// Validate checks the request invariants: a known skill/format pair, exactly
// one content source, and an item count within the format's bounds.
func (r *GenerationRequest) Validate() error {
	if r.TeacherID == uuid.Nil {
		return fmt.Errorf("%w: teacher ID is required", ErrValidation)
	}
	if _, err := ParseSkill(string(r.Skill)); err != nil {
		return err
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	if _, err := ParseDifficulty(string(r.Difficulty)); err != nil {
		return err
	}

	hasBook := r.BookID != 0
	hasText := r.SourceText != ""
	if hasBook && hasText {
		return ErrAmbiguousContentSource
	}
	if !hasBook && !hasText {
		return ErrNoContentSource
	}

	min, max := ItemCountBounds(r.Format)
	if r.ItemCount < min || r.ItemCount > max {
		return fmt.Errorf("%w: got %d, allowed %d-%d for %s",
			ErrItemCountOutOfRange, r.ItemCount, min, max, r.Format)
	}
	return nil
}
