package api

import (
	"log/slog"
	"net/http"

	"github.com/owlingo/owlingo-api/internal/api/shared"
	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/generation"
)

// GenerationHandler handles activity generation requests.
type GenerationHandler struct {
	coordinator *generation.Coordinator
	logger      *slog.Logger
}

// NewGenerationHandler creates a handler over the generation coordinator. A
// nil logger falls back to slog.Default.
func NewGenerationHandler(coordinator *generation.Coordinator, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		coordinator: coordinator,
		logger:      logger.With(slog.String("component", "generation_handler")),
	}
}

// Generate handles POST /api/generate.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing or invalid request fields")
		return
	}

	genReq := &domain.GenerationRequest{
		TeacherID:  req.TeacherID,
		Skill:      domain.Skill(req.Skill),
		Format:     domain.Format(req.Format),
		BookID:     req.BookID,
		ModuleIDs:  req.ModuleIDs,
		SourceText: req.SourceText,
		ItemCount:  req.ItemCount,
		Difficulty: domain.Difficulty(req.Difficulty),
		Language:   req.Language,
	}

	res, err := h.coordinator.Generate(r.Context(), genReq)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toGenerateResponse(res))
}

// GenerateMix handles POST /api/generate/mix.
func (h *GenerationHandler) GenerateMix(w http.ResponseWriter, r *http.Request) {
	var req GenerateMixRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing or invalid request fields")
		return
	}

	mixReq := &generation.MixRequest{
		TeacherID:  req.TeacherID,
		BookID:     req.BookID,
		ModuleIDs:  req.ModuleIDs,
		SourceText: req.SourceText,
		Difficulty: domain.Difficulty(req.Difficulty),
		Language:   req.Language,
	}
	for _, p := range req.Parts {
		mixReq.Parts = append(mixReq.Parts, generation.MixPart{
			Skill:     domain.Skill(p.Skill),
			Format:    domain.Format(p.Format),
			ItemCount: p.ItemCount,
		})
	}

	res, err := h.coordinator.GenerateMix(r.Context(), mixReq)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	out := GenerateMixResponse{Parts: make([]GenerateResponse, 0, len(res.Parts))}
	for i := range res.Parts {
		out.Parts = append(out.Parts, toGenerateResponse(&res.Parts[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
