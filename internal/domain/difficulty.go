package domain

import (
	"fmt"
	"strings"
)

// Difficulty is the caller-facing difficulty setting of a generation request.
type Difficulty string

// Difficulty values accepted in requests. DifficultyAuto derives the bucket
// from the resolved metadata context.
const (
	DifficultyAuto   Difficulty = "auto"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty value. An empty string defaults to
// auto.
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return DifficultyAuto, nil
	}
	switch Difficulty(s) {
	case DifficultyAuto, DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

// cefrToBucket maps a coarse CEFR level reported by the content store to an
// internal difficulty bucket. Unknown levels default to medium.
var cefrToBucket = map[string]Difficulty{
	"A1": DifficultyEasy,
	"A2": DifficultyMedium,
	"B1": DifficultyMedium,
	"B2": DifficultyHard,
	"C1": DifficultyHard,
	"C2": DifficultyHard,
}

// BucketForCEFR maps a CEFR-like level label to a difficulty bucket.
func BucketForCEFR(level string) Difficulty {
	if d, ok := cefrToBucket[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return d
	}
	return DifficultyMedium
}

// levelLabels are the canonical level labels substituted into prompts.
var levelLabels = map[Difficulty]string{
	DifficultyEasy:   "A1 (beginner)",
	DifficultyMedium: "A2-B1 (intermediate)",
	DifficultyHard:   "B2+ (advanced)",
}

// LevelLabel returns the canonical prompt label for a non-auto difficulty.
func LevelLabel(d Difficulty) string {
	if l, ok := levelLabels[d]; ok {
		return l
	}
	return levelLabels[DifficultyMedium]
}
