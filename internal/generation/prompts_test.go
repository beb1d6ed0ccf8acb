package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlingo/owlingo-api/internal/domain"
)

func TestBookPromptCarriesContext(t *testing.T) {
	t.Parallel()

	req := &domain.GenerationRequest{BookID: 42, ItemCount: 5}
	data := buildPromptData(req, a2Context(), domain.DifficultyMedium)

	out, err := renderPrompt(listeningQuizPrompt, data)
	require.NoError(t, err)

	assert.Contains(t, out, "Create 5 listening comprehension questions")
	assert.Contains(t, out, `"Everyday English"`)
	assert.Contains(t, out, "At the Market")
	assert.Contains(t, out, "apple, price")
	assert.Contains(t, out, "countable nouns")
	assert.Contains(t, out, "A2-B1 (intermediate)")
	assert.Contains(t, out, "Language: en")
}

func TestFreeTextPromptOmitsBookContext(t *testing.T) {
	t.Parallel()

	req := &domain.GenerationRequest{SourceText: "A story about a lighthouse keeper.", ItemCount: 3}
	mc := &domain.MetadataContext{Language: "en"}
	data := buildPromptData(req, mc, domain.DifficultyHard)

	out, err := renderPrompt(fillBlankPrompt, data)
	require.NoError(t, err)

	assert.Contains(t, out, "lighthouse keeper")
	assert.Contains(t, out, "B2+ (advanced)")
	assert.NotContains(t, out, "course material")
}

func TestPromptRenderingIsDeterministic(t *testing.T) {
	t.Parallel()

	req := &domain.GenerationRequest{BookID: 42, ItemCount: 5}
	data := buildPromptData(req, a2Context(), domain.DifficultyEasy)

	first, err := renderPrompt(readingQuizPrompt, data)
	require.NoError(t, err)
	second, err := renderPrompt(readingQuizPrompt, data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
