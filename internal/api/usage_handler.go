package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/api/shared"
	"github.com/owlingo/owlingo-api/internal/ratelimit"
)

// UsageHandler serves per-teacher quota consumption.
type UsageHandler struct {
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewUsageHandler creates a usage handler over the rate limiter.
func NewUsageHandler(limiter *ratelimit.Limiter, logger *slog.Logger) *UsageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageHandler{
		limiter: limiter,
		logger:  logger.With(slog.String("component", "usage_handler")),
	}
}

// GetUsage handles GET /api/usage/{teacher_id}.
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	teacherID, err := uuid.Parse(chi.URLParam(r, "teacher_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid teacher ID")
		return
	}

	used, limit, resetAt := h.limiter.Usage(teacherID)
	shared.RespondWithJSON(w, r, http.StatusOK, UsageResponse{
		TeacherID: teacherID,
		Used:      used,
		Limit:     limit,
		ResetAt:   resetAt,
	})
}
