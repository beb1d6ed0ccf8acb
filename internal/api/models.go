package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/generation"
)

// GenerateRequest is the request model for POST /api/generate.
type GenerateRequest struct {
	TeacherID  uuid.UUID `json:"teacher_id" validate:"required"`
	Skill      string    `json:"skill" validate:"required"`
	Format     string    `json:"format" validate:"required"`
	BookID     int64     `json:"book_id,omitempty"`
	ModuleIDs  []int64   `json:"module_ids,omitempty"`
	SourceText string    `json:"source_text,omitempty"`
	ItemCount  int       `json:"question_count" validate:"required,gt=0"`
	Difficulty string    `json:"difficulty,omitempty"`
	Language   string    `json:"language,omitempty"`
}

// GenerateResponse is the response model for POST /api/generate. Activity is
// the authoring view the LMS persists; PublicActivity is the only shape ever
// served to students.
type GenerateResponse struct {
	Skill          string `json:"skill"`
	Format         string `json:"format"`
	Activity       any    `json:"activity"`
	PublicActivity any    `json:"public_activity"`
}

// MixPartRequest is one constituent of a mix request.
type MixPartRequest struct {
	Skill     string `json:"skill" validate:"required"`
	Format    string `json:"format" validate:"required"`
	ItemCount int    `json:"count" validate:"required,gt=0"`
}

// GenerateMixRequest is the request model for POST /api/generate/mix.
type GenerateMixRequest struct {
	TeacherID  uuid.UUID        `json:"teacher_id" validate:"required"`
	Parts      []MixPartRequest `json:"parts" validate:"required,min=1,dive"`
	BookID     int64            `json:"book_id,omitempty"`
	ModuleIDs  []int64          `json:"module_ids,omitempty"`
	SourceText string           `json:"source_text,omitempty"`
	Difficulty string           `json:"difficulty,omitempty"`
	Language   string           `json:"language,omitempty"`
}

// GenerateMixResponse is the response model for POST /api/generate/mix.
type GenerateMixResponse struct {
	Parts []GenerateResponse `json:"parts"`
}

// UsageResponse is the response model for GET /api/usage/{teacher_id}.
type UsageResponse struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

func toGenerateResponse(res *generation.Result) GenerateResponse {
	return GenerateResponse{
		Skill:          string(res.Skill),
		Format:         string(res.Format),
		Activity:       res.Activity,
		PublicActivity: res.Public,
	}
}
