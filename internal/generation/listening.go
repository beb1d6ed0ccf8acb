package generation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/structured"
)

// ListeningQuizService generates audio comprehension multiple-choice quizzes.
// Items are created with pending audio; synthesis happens downstream.
type ListeningQuizService struct {
	deps
}

// NewListeningQuizService constructs the listening/quiz service.
func NewListeningQuizService(generator Generator, resolver ContextResolver, logger *slog.Logger, opts provider.GenerationOptions) (*ListeningQuizService, error) {
	d, err := newDeps(generator, resolver, logger, opts)
	if err != nil {
		return nil, err
	}
	return &ListeningQuizService{deps: d}, nil
}

func listeningQuizSchema(maxItems int) *structured.Schema {
	return &structured.Schema{Fields: []structured.Field{
		{Name: "items", Type: structured.TypeArray, Required: true, MinItems: 1, MaxItems: maxItems, Items: &structured.Schema{
			Fields: []structured.Field{
				{Name: "audio_text", Type: structured.TypeString, Required: true, Description: "short passage a narrator reads aloud"},
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

// Generate runs the full pipeline for a listening quiz request.
func (s *ListeningQuizService) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.ListeningQuizActivity, error) {
	if err := validateFor(req, domain.SkillListening, domain.FormatQuiz); err != nil {
		return nil, err
	}

	mc, err := s.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}
	bucket := pickDifficulty(req, mc)

	user, err := renderPrompt(listeningQuizPrompt, buildPromptData(req, mc, bucket))
	if err != nil {
		return nil, err
	}

	meta := provider.CallMeta{TeacherID: req.TeacherID, Operation: operationName(req.Skill, req.Format)}
	obj, _, err := s.generator.Generate(ctx, meta, provider.Prompt{System: systemPrompt, User: user}, listeningQuizSchema(req.ItemCount), s.opts)
	if err != nil {
		return nil, err
	}

	items := normalizeListeningItems(obj.Array("items"))
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}
	if len(items) < req.ItemCount {
		s.logger.InfoContext(ctx, "accepted fewer items than requested",
			slog.String("operation", meta.Operation),
			slog.Int("requested", req.ItemCount),
			slog.Int("accepted", len(items)))
	}

	return &domain.ListeningQuizActivity{
		ActivityHeader: domain.NewActivityHeader(req.Skill, req.Format, bucket, mc.Language, len(items)),
		Items:          items,
	}, nil
}

// normalizeListeningItems applies the semantic checks schema validation cannot
// express and assigns item identities.
func normalizeListeningItems(raw []structured.Object) []domain.ListeningQuizItem {
	items := make([]domain.ListeningQuizItem, 0, len(raw))
	for _, o := range raw {
		options := optionTexts(o.Array("options"))
		idx := o.Int("correct_index")
		if o.String("question") == "" || o.String("audio_text") == "" {
			continue
		}
		if len(options) != 4 || idx < 0 || idx >= len(options) {
			continue
		}
		items = append(items, domain.ListeningQuizItem{
			ItemID:       uuid.New(),
			Question:     o.String("question"),
			Options:      options,
			CorrectIndex: idx,
			Explanation:  o.String("explanation"),
			AudioText:    o.String("audio_text"),
			AudioStatus:  domain.AudioStatusPending,
		})
	}
	return items
}

// optionTexts flattens option objects into their display strings, dropping
// empties so the index check catches short option lists.
func optionTexts(raw []structured.Object) []string {
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if t := o.String("text"); t != "" {
			out = append(out, t)
		}
	}
	return out
}
