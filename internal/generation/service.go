// Package generation implements the per-skill/format generation services and
// the coordinator that fronts them: quota checks, context resolution, prompt
// construction, structured generation, normalization and the authoring/public
// dual view.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/owlingo/owlingo-api/internal/content"
	"github.com/owlingo/owlingo-api/internal/domain"
	"github.com/owlingo/owlingo-api/internal/provider"
	"github.com/owlingo/owlingo-api/internal/structured"
)

// ContextResolver assembles the teaching context for a book/module source.
// Satisfied by *content.Resolver.
type ContextResolver interface {
	Resolve(ctx context.Context, bookID int64, moduleIDs []int64, languageOverride string) (*domain.MetadataContext, error)
}

// Generator is the structured-generation dependency of every service.
// Satisfied by *structured.Generator.
type Generator interface {
	Generate(ctx context.Context, meta provider.CallMeta, prompt provider.Prompt, schema *structured.Schema, opts provider.GenerationOptions) (structured.Object, *provider.GenerationResult, error)
}

// defaultLanguage is used for free-text sources without a language override.
const defaultLanguage = "en"

// deps is the shared dependency set of the four services.
type deps struct {
	generator Generator
	resolver  ContextResolver
	logger    *slog.Logger
	opts      provider.GenerationOptions
}

func newDeps(generator Generator, resolver ContextResolver, logger *slog.Logger, opts provider.GenerationOptions) (deps, error) {
	if generator == nil {
		return deps{}, errors.New("structured generator is required")
	}
	if resolver == nil {
		return deps{}, errors.New("context resolver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return deps{generator: generator, resolver: resolver, logger: logger, opts: opts}, nil
}

// resolveSource produces the teaching context for the request's content
// source. Book/module sources go through the resolver; a missing book or
// module set is a terminal source-not-found. Free-text sources synthesize a
// minimal context so prompt construction stays uniform.
func (d *deps) resolveSource(ctx context.Context, req *domain.GenerationRequest) (*domain.MetadataContext, error) {
	if req.SourceText != "" {
		lang := req.Language
		if lang == "" {
			lang = defaultLanguage
		}
		return &domain.MetadataContext{Language: lang}, nil
	}

	mc, err := d.resolver.Resolve(ctx, req.BookID, req.ModuleIDs, req.Language)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrNotReady) {
			return nil, fmt.Errorf("book %d: %v: %w", req.BookID, err, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("resolving context for book %d: %w", req.BookID, err)
	}
	return mc, nil
}

// pickDifficulty applies the request's explicit difficulty, or derives the
// bucket from the context's CEFR level when the request says auto.
func pickDifficulty(req *domain.GenerationRequest, mc *domain.MetadataContext) domain.Difficulty {
	if req.Difficulty != "" && req.Difficulty != domain.DifficultyAuto {
		return req.Difficulty
	}
	return domain.BucketForCEFR(mc.DifficultyLevel)
}

// validateFor checks the request and that it targets the given skill/format
// pair.
func validateFor(req *domain.GenerationRequest, skill domain.Skill, format domain.Format) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Skill != skill || req.Format != format {
		return fmt.Errorf("%w: service handles %s/%s, request is %s/%s",
			ErrUnsupportedPair, skill, format, req.Skill, req.Format)
	}
	return nil
}

func operationName(skill domain.Skill, format domain.Format) string {
	return string(skill) + "_" + string(format)
}
