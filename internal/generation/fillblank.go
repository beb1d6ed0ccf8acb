package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/structured"
)

// blankMarker is the placeholder every cloze sentence must contain exactly
// once.
const blankMarker = "___"

// FillBlankService generates grammar cloze exercises.
type FillBlankService struct {
	deps
}

// NewFillBlankService constructs the grammar/fill_blank service.
func NewFillBlankService(generator Generator, resolver ContextResolver, logger *slog.Logger, opts provider.GenerationOptions) (*FillBlankService, error) {
	d, err := newDeps(generator, resolver, logger, opts)
	if err != nil {
		return nil, err
	}
	return &FillBlankService{deps: d}, nil
}

func fillBlankSchema(maxItems int) *structured.Schema {
	return &structured.Schema{Fields: []structured.Field{
		{Name: "items", Type: structured.TypeArray, Required: true, MinItems: 1, MaxItems: maxItems, Items: &structured.Schema{
			Fields: []structured.Field{
				{Name: "sentence", Type: structured.TypeString, Required: true, Description: `sentence with exactly one blank written as "___"`},
				{Name: "answer", Type: structured.TypeString, Required: true},
				{Name: "hint", Type: structured.TypeString},
			},
		}},
	}}
}

// Generate runs the full pipeline for a fill-in-the-blank request.
func (s *FillBlankService) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.FillBlankActivity, error) {
	if err := validateFor(req, domain.SkillGrammar, domain.FormatFillBlank); err != nil {
		return nil, err
	}

	mc, err := s.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}
	bucket := pickDifficulty(req, mc)

	user, err := renderPrompt(fillBlankPrompt, buildPromptData(req, mc, bucket))
	if err != nil {
		return nil, err
	}

	meta := provider.CallMeta{TeacherID: req.TeacherID, Operation: operationName(req.Skill, req.Format)}
	obj, _, err := s.generator.Generate(ctx, meta, provider.Prompt{System: systemPrompt, User: user}, fillBlankSchema(req.ItemCount), s.opts)
	if err != nil {
		return nil, err
	}

	items := normalizeFillBlanks(obj.Array("items"))
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}
	if len(items) < req.ItemCount {
		s.logger.InfoContext(ctx, "accepted fewer items than requested",
			slog.String("operation", meta.Operation),
			slog.Int("requested", req.ItemCount),
			slog.Int("accepted", len(items)))
	}

	return &domain.FillBlankActivity{
		ActivityHeader: domain.NewActivityHeader(req.Skill, req.Format, bucket, mc.Language, len(items)),
		Items:          items,
	}, nil
}

func normalizeFillBlanks(raw []structured.Object) []domain.FillBlankItem {
	items := make([]domain.FillBlankItem, 0, len(raw))
	for _, o := range raw {
		sentence, answer := o.String("sentence"), o.String("answer")
		// A gradable cloze needs exactly one blank and a non-empty answer.
		if answer == "" || strings.Count(sentence, blankMarker) != 1 {
			continue
		}
		items = append(items, domain.FillBlankItem{
			ItemID:   uuid.New(),
			Sentence: sentence,
			Answer:   answer,
			Hint:     o.String("hint"),
		})
	}
	return items
}
