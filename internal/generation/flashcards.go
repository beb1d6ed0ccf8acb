package generation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/structured"
)

// FlashcardService generates vocabulary flashcard sets.
type FlashcardService struct {
	deps
}

// NewFlashcardService constructs the vocabulary/flashcards service.
func NewFlashcardService(generator Generator, resolver ContextResolver, logger *slog.Logger, opts provider.GenerationOptions) (*FlashcardService, error) {
	d, err := newDeps(generator, resolver, logger, opts)
	if err != nil {
		return nil, err
	}
	return &FlashcardService{deps: d}, nil
}

func flashcardSchema(maxItems int) *structured.Schema {
	return &structured.Schema{Fields: []structured.Field{
		{Name: "items", Type: structured.TypeArray, Required: true, MinItems: 1, MaxItems: maxItems, Items: &structured.Schema{
			Fields: []structured.Field{
				{Name: "front", Type: structured.TypeString, Required: true, Description: "the word or phrase"},
				{Name: "back", Type: structured.TypeString, Required: true, Description: "concise definition or translation"},
				{Name: "example", Type: structured.TypeString},
				{Name: "part_of_speech", Type: structured.TypeString},
			},
		}},
	}}
}

// Generate runs the full pipeline for a flashcard request.
func (s *FlashcardService) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.FlashcardActivity, error) {
	if err := validateFor(req, domain.SkillVocabulary, domain.FormatFlashcards); err != nil {
		return nil, err
	}

	mc, err := s.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}
	bucket := pickDifficulty(req, mc)

	user, err := renderPrompt(flashcardsPrompt, buildPromptData(req, mc, bucket))
	if err != nil {
		return nil, err
	}

	meta := provider.CallMeta{TeacherID: req.TeacherID, Operation: operationName(req.Skill, req.Format)}
	obj, _, err := s.generator.Generate(ctx, meta, provider.Prompt{System: systemPrompt, User: user}, flashcardSchema(req.ItemCount), s.opts)
	if err != nil {
		return nil, err
	}

	items := normalizeFlashcards(obj.Array("items"))
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}
	if len(items) < req.ItemCount {
		s.logger.InfoContext(ctx, "accepted fewer items than requested",
			slog.String("operation", meta.Operation),
			slog.Int("requested", req.ItemCount),
			slog.Int("accepted", len(items)))
	}

	return &domain.FlashcardActivity{
		ActivityHeader: domain.NewActivityHeader(req.Skill, req.Format, bucket, mc.Language, len(items)),
		Items:          items,
	}, nil
}

func normalizeFlashcards(raw []structured.Object) []domain.FlashcardItem {
	seen := make(map[string]struct{}, len(raw))
	items := make([]domain.FlashcardItem, 0, len(raw))
	for _, o := range raw {
		front, back := o.String("front"), o.String("back")
		if front == "" || back == "" {
			continue
		}
		// Duplicate fronts teach nothing; keep the first occurrence.
		if _, dup := seen[front]; dup {
			continue
		}
		seen[front] = struct{}{}
		items = append(items, domain.FlashcardItem{
			ItemID:       uuid.New(),
			Front:        front,
			Back:         back,
			Example:      o.String("example"),
			PartOfSpeech: o.String("part_of_speech"),
		})
	}
	return items
}
