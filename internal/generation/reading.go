package generation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/structured"
)

// ReadingQuizService generates passage-based multiple-choice quizzes.
type ReadingQuizService struct {
	deps
}

// NewReadingQuizService constructs the reading/quiz service.
func NewReadingQuizService(generator Generator, resolver ContextResolver, logger *slog.Logger, opts provider.GenerationOptions) (*ReadingQuizService, error) {
	d, err := newDeps(generator, resolver, logger, opts)
	if err != nil {
		return nil, err
	}
	return &ReadingQuizService{deps: d}, nil
}

func readingQuizSchema(maxItems int) *structured.Schema {
	return &structured.Schema{Fields: []structured.Field{
		{Name: "passage", Type: structured.TypeString, Required: true, Description: "the reading passage shown to the student"},
		{Name: "items", Type: structured.TypeArray, Required: true, MinItems: 1, MaxItems: maxItems, Items: &structured.Schema{
			Fields: []structured.Field{
				{Name: "question", Type: structured.TypeString, Required: true},
				{Name: "options", Type: structured.TypeArray, Required: true, MinItems: 4, MaxItems: 4, Items: &structured.Schema{
					Fields: []structured.Field{{Name: "text", Type: structured.TypeString, Required: true}},
				}},
				{Name: "correct_index", Type: structured.TypeInteger, Required: true},
				{Name: "explanation", Type: structured.TypeString},
			},
		}},
	}}
}

// Generate runs the full pipeline for a reading quiz request.
func (s *ReadingQuizService) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.ReadingQuizActivity, error) {
	if err := validateFor(req, domain.SkillReading, domain.FormatQuiz); err != nil {
		return nil, err
	}

	mc, err := s.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}
	bucket := pickDifficulty(req, mc)

	user, err := renderPrompt(readingQuizPrompt, buildPromptData(req, mc, bucket))
	if err != nil {
		return nil, err
	}

	meta := provider.CallMeta{TeacherID: req.TeacherID, Operation: operationName(req.Skill, req.Format)}
	obj, _, err := s.generator.Generate(ctx, meta, provider.Prompt{System: systemPrompt, User: user}, readingQuizSchema(req.ItemCount), s.opts)
	if err != nil {
		return nil, err
	}

	items := normalizeReadingItems(obj.Array("items"))
	if len(items) == 0 || obj.String("passage") == "" {
		return nil, ErrNoValidItems
	}
	if len(items) < req.ItemCount {
		s.logger.InfoContext(ctx, "accepted fewer items than requested",
			slog.String("operation", meta.Operation),
			slog.Int("requested", req.ItemCount),
			slog.Int("accepted", len(items)))
	}

	return &domain.ReadingQuizActivity{
		ActivityHeader: domain.NewActivityHeader(req.Skill, req.Format, bucket, mc.Language, len(items)),
		Passage:        obj.String("passage"),
		Items:          items,
	}, nil
}

func normalizeReadingItems(raw []structured.Object) []domain.ReadingQuizItem {
	items := make([]domain.ReadingQuizItem, 0, len(raw))
	for _, o := range raw {
		options := optionTexts(o.Array("options"))
		idx := o.Int("correct_index")
		if o.String("question") == "" {
			continue
		}
		if len(options) != 4 || idx < 0 || idx >= len(options) {
			continue
		}
		items = append(items, domain.ReadingQuizItem{
			ItemID:       uuid.New(),
			Question:     o.String("question"),
			Options:      options,
			CorrectIndex: idx,
			Explanation:  o.String("explanation"),
		})
	}
	return items
}
