package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/ratelimit"
)

// AudioEnqueuer schedules speech synthesis for a freshly generated listening
// activity. Enqueue failures never fail the generation itself.
// Implementations must copy whatever they need from the activity before
// returning: the caller serves the same activity concurrently with the
// synthesis work.
type AudioEnqueuer interface {
	EnqueueListeningActivity(ctx context.Context, teacherID uuid.UUID, activity *domain.ListeningQuizActivity) error
}

// Result is the tagged outcome of one skill/format generation: the authoring
// view (answers included, persisted by the LMS) and the redacted public view
// (served to students).
type Result struct {
	Skill    domain.Skill  `json:"skill"`
	Format   domain.Format `json:"format"`
	Activity any           `json:"activity"`
	Public   any           `json:"public_activity"`
}

// MixPart names one constituent of a mix request.
type MixPart struct {
	Skill     domain.Skill  `json:"skill"`
	Format    domain.Format `json:"format"`
	ItemCount int           `json:"count"`
}

// MixRequest asks for several skill/format generations over one shared
// content source. Each part consumes one daily-quota unit; quota for all
// parts is acquired up front, before any provider call.
type MixRequest struct {
	TeacherID uuid.UUID
	Parts     []MixPart

	BookID     int64
	ModuleIDs  []int64
	SourceText string

	Difficulty domain.Difficulty
	Language   string
}

// MixResult is the merged outcome of a mix request, one tagged Result per
// part in request order.
type MixResult struct {
	Parts []Result `json:"parts"`
}

// Coordinator fronts the generation services: it owns the quota check and
// dispatches each request to the service for its skill/format pair. It also
// hands listening activities to the audio enqueuer.
type Coordinator struct {
	limiter    *ratelimit.Limiter
	listening  *ListeningQuizService
	reading    *ReadingQuizService
	vocabulary *FlashcardService
	grammar    *FillBlankService
	enqueuer   AudioEnqueuer
	logger     *slog.Logger
}

// CoordinatorConfig wires a coordinator. Enqueuer may be nil when audio
// synthesis is disabled.
type CoordinatorConfig struct {
	Limiter    *ratelimit.Limiter
	Listening  *ListeningQuizService
	Reading    *ReadingQuizService
	Vocabulary *FlashcardService
	Grammar    *FillBlankService
	Enqueuer   AudioEnqueuer
	Logger     *slog.Logger
}

// NewCoordinator validates the config and builds a coordinator.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if cfg.Listening == nil || cfg.Reading == nil || cfg.Vocabulary == nil || cfg.Grammar == nil {
		return nil, errors.New("all four generation services are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		limiter:    cfg.Limiter,
		listening:  cfg.Listening,
		reading:    cfg.Reading,
		vocabulary: cfg.Vocabulary,
		grammar:    cfg.Grammar,
		enqueuer:   cfg.Enqueuer,
		logger:     logger.With(slog.String("component", "generation_coordinator")),
	}, nil
}

// Generate runs a single skill/format request: validate, consume one quota
// unit, dispatch. A quota breach returns before any provider is contacted.
func (c *Coordinator) Generate(ctx context.Context, req *domain.GenerationRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.limiter.Acquire(req.TeacherID, req.ItemCount, 1); err != nil {
		return nil, err
	}
	return c.dispatch(ctx, req)
}

// GenerateMix runs every part of a mix request over the shared source,
// merging the tagged results in part order. Any part failure fails the mix
// with the union of part errors.
func (c *Coordinator) GenerateMix(ctx context.Context, req *MixRequest) (*MixResult, error) {
	if len(req.Parts) == 0 {
		return nil, fmt.Errorf("%w: mix request needs at least one part", domain.ErrValidation)
	}

	partReqs := make([]*domain.GenerationRequest, len(req.Parts))
	maxItems := 0
	for i, p := range req.Parts {
		pr := &domain.GenerationRequest{
			TeacherID:  req.TeacherID,
			Skill:      p.Skill,
			Format:     p.Format,
			BookID:     req.BookID,
			ModuleIDs:  req.ModuleIDs,
			SourceText: req.SourceText,
			ItemCount:  p.ItemCount,
			Difficulty: req.Difficulty,
			Language:   req.Language,
		}
		if err := pr.Validate(); err != nil {
			return nil, fmt.Errorf("mix part %d (%s/%s): %w", i, p.Skill, p.Format, err)
		}
		if p.ItemCount > maxItems {
			maxItems = p.ItemCount
		}
		partReqs[i] = pr
	}

	// One quota unit per part, all acquired before any provider call.
	if err := c.limiter.Acquire(req.TeacherID, maxItems, len(req.Parts)); err != nil {
		return nil, err
	}

	out := &MixResult{Parts: make([]Result, 0, len(req.Parts))}
	var errs []error
	for i, pr := range partReqs {
		res, err := c.dispatch(ctx, pr)
		if err != nil {
			errs = append(errs, fmt.Errorf("mix part %d (%s/%s): %w", i, pr.Skill, pr.Format, err))
			continue
		}
		out.Parts = append(out.Parts, *res)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *Coordinator) dispatch(ctx context.Context, req *domain.GenerationRequest) (*Result, error) {
	switch {
	case req.Skill == domain.SkillListening && req.Format == domain.FormatQuiz:
		activity, err := c.listening.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		c.enqueueAudio(ctx, req.TeacherID, activity)
		return &Result{Skill: req.Skill, Format: req.Format, Activity: activity, Public: activity.Public()}, nil

	case req.Skill == domain.SkillReading && req.Format == domain.FormatQuiz:
		activity, err := c.reading.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Result{Skill: req.Skill, Format: req.Format, Activity: activity, Public: activity.Public()}, nil

	case req.Skill == domain.SkillVocabulary && req.Format == domain.FormatFlashcards:
		activity, err := c.vocabulary.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Result{Skill: req.Skill, Format: req.Format, Activity: activity, Public: activity.Public()}, nil

	case req.Skill == domain.SkillGrammar && req.Format == domain.FormatFillBlank:
		activity, err := c.grammar.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Result{Skill: req.Skill, Format: req.Format, Activity: activity, Public: activity.Public()}, nil

	default:
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedPair, req.Skill, req.Format)
	}
}

// enqueueAudio hands a listening activity to the synthesis queue. The
// activity already succeeded; a full or absent queue only means its audio
// stays pending. The served activity always reports pending audio; synthesis
// outcomes land in the audio store, not in this response.
func (c *Coordinator) enqueueAudio(ctx context.Context, teacherID uuid.UUID, activity *domain.ListeningQuizActivity) {
	if c.enqueuer == nil {
		return
	}
	if err := c.enqueuer.EnqueueListeningActivity(ctx, teacherID, activity); err != nil {
		c.logger.WarnContext(ctx, "audio synthesis enqueue failed, items stay pending",
			slog.String("activity_id", activity.ActivityID.String()),
			slog.String("error", err.Error()))
	}
}
