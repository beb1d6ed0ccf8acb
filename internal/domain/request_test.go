package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validRequest() GenerationRequest {
	return GenerationRequest{
		TeacherID:  uuid.New(),
		Skill:      SkillListening,
		Format:     FormatQuiz,
		BookID:     42,
		ModuleIDs:  []int64{1, 2},
		ItemCount:  10,
		Difficulty: DifficultyAuto,
	}
}

func TestGenerationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerationRequest)
		wantErr error
	}{
		{
			name:   "valid book source",
			mutate: func(r *GenerationRequest) {},
		},
		{
			name: "valid text source",
			mutate: func(r *GenerationRequest) {
				r.BookID = 0
				r.ModuleIDs = nil
				r.SourceText = "The cat sat on the mat."
			},
		},
		{
			name:    "missing teacher",
			mutate:  func(r *GenerationRequest) { r.TeacherID = uuid.Nil },
			wantErr: ErrValidation,
		},
		{
			name:    "unknown skill",
			mutate:  func(r *GenerationRequest) { r.Skill = "dancing" },
			wantErr: ErrUnknownSkill,
		},
		{
			name:    "unknown format",
			mutate:  func(r *GenerationRequest) { r.Format = "karaoke" },
			wantErr: ErrUnknownFormat,
		},
		{
			name:    "unknown difficulty",
			mutate:  func(r *GenerationRequest) { r.Difficulty = "impossible" },
			wantErr: ErrUnknownDifficulty,
		},
		{
			name: "both sources populated",
			mutate: func(r *GenerationRequest) {
				r.SourceText = "extra text"
			},
			wantErr: ErrAmbiguousContentSource,
		},
		{
			name: "no source populated",
			mutate: func(r *GenerationRequest) {
				r.BookID = 0
				r.ModuleIDs = nil
			},
			wantErr: ErrNoContentSource,
		},
		{
			name:    "count below minimum",
			mutate:  func(r *GenerationRequest) { r.ItemCount = 0 },
			wantErr: ErrItemCountOutOfRange,
		},
		{
			name:    "count above quiz maximum",
			mutate:  func(r *GenerationRequest) { r.ItemCount = 21 },
			wantErr: ErrItemCountOutOfRange,
		},
		{
			name: "flashcards allow larger counts",
			mutate: func(r *GenerationRequest) {
				r.Skill = SkillVocabulary
				r.Format = FormatFlashcards
				r.ItemCount = 40
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDifficultyDefaultsToAuto(t *testing.T) {
	d, err := ParseDifficulty("")
	assert.NoError(t, err)
	assert.Equal(t, DifficultyAuto, d)
}

func TestBucketForCEFR(t *testing.T) {
	tests := []struct {
		level string
		want  Difficulty
	}{
		{"A1", DifficultyEasy},
		{"A2", DifficultyMedium},
		{"a2", DifficultyMedium},
		{"B1", DifficultyMedium},
		{"B2", DifficultyHard},
		{"C1", DifficultyHard},
		{"", DifficultyMedium},
		{"Z9", DifficultyMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketForCEFR(tt.level), "level %q", tt.level)
	}
}
