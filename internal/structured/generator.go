package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/owlingo/owlingo-api/internal/provider"
)

// Generator asks the provider manager for a schema-conformant object and
// validates the raw payload before handing it to the caller.
type Generator struct {
	manager *provider.Manager
	logger  *slog.Logger
}

// NewGenerator creates a generator over the given manager. A nil logger falls
// back to slog.Default.
func NewGenerator(manager *provider.Manager, logger *slog.Logger) (*Generator, error) {
	if manager == nil {
		return nil, errors.New("provider manager is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		manager: manager,
		logger:  logger.With(slog.String("component", "structured_generator")),
	}, nil
}

// Generate runs the prompt through the provider chain, validating every
// payload inside the fallback fold: a schema-invalid payload counts as a
// failed attempt and the next provider is tried. The returned
// GenerationResult carries provider identity, usage and latency for the
// attempt that produced the validated object. Exhausting the chain surfaces
// a *provider.AggregateError whose failures wrap ErrInvalidResponse for
// schema-rejected payloads.
func (g *Generator) Generate(ctx context.Context, meta provider.CallMeta, prompt provider.Prompt, schema *Schema, opts provider.GenerationOptions) (Object, *provider.GenerationResult, error) {
	doc, err := MarshalSchema(schema)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering schema: %w", err)
	}

	var obj Object
	res, err := g.manager.GenerateValidated(ctx, meta, prompt, doc, opts, func(raw json.RawMessage) error {
		var verr error
		obj, verr = Validate(raw, schema)
		return verr
	})
	if err != nil {
		return nil, nil, err
	}
	return obj, res, nil
}
