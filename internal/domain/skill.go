package domain

import "fmt"

// Skill identifies the language skill an activity trains.
type Skill string

// Supported skills.
const (
	SkillListening  Skill = "listening"
	SkillReading    Skill = "reading"
	SkillVocabulary Skill = "vocabulary"
	SkillGrammar    Skill = "grammar"
)

// Format identifies the exercise format of an activity.
type Format string

// Supported formats.
const (
	FormatQuiz       Format = "quiz"
	FormatFlashcards Format = "flashcards"
	FormatFillBlank  Format = "fill_blank"
)

// itemCountBounds holds the per-request item count range allowed for a format.
type itemCountBounds struct {
	Min int
	Max int
}

// formatBounds is the fixed per-format item count policy.
var formatBounds = map[Format]itemCountBounds{
	FormatQuiz:       {Min: 1, Max: 20},
	FormatFlashcards: {Min: 1, Max: 40},
	FormatFillBlank:  {Min: 1, Max: 25},
}

// ParseSkill validates a skill identifier.
func ParseSkill(s string) (Skill, error) {
	switch Skill(s) {
	case SkillListening, SkillReading, SkillVocabulary, SkillGrammar:
		return Skill(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSkill, s)
	}
}

// ParseFormat validates a format identifier.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatQuiz, FormatFlashcards, FormatFillBlank:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ItemCountBounds returns the allowed item count range for a format.
// Unknown formats fall back to the quiz bounds.
func ItemCountBounds(f Format) (min, max int) {
	b, ok := formatBounds[f]
	if !ok {
		b = formatBounds[FormatQuiz]
	}
	return b.Min, b.Max
}
