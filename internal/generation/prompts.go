package generation

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/owlingo/owlingo-api/internal/domain"
)

// promptData is the substitution context for every prompt template. Rendering
// is deterministic: same data, same prompt.
type promptData struct {
	ItemCount int
	Level     string
	Language  string

	BookTitle     string
	ModuleTitles  []string
	Summaries     []string
	Topics        []string
	Vocabulary    []string
	GrammarPoints []string

	SourceText string
}

const sharedContextTemplate = `
{{- if .SourceText -}}
Base the exercise on this source text:
"""
{{.SourceText}}
"""
{{- else -}}
Base the exercise on course material from "{{.BookTitle}}".
Modules covered: {{join .ModuleTitles "; "}}.
{{- range .Summaries}}
- {{.}}
{{- end}}
{{- if .Topics}}
Topics: {{join .Topics ", "}}.
{{- end}}
{{- if .Vocabulary}}
Target vocabulary: {{join .Vocabulary ", "}}.
{{- end}}
{{- if .GrammarPoints}}
Grammar points in scope: {{join .GrammarPoints ", "}}.
{{- end}}
{{- end}}

Language: {{.Language}}. Difficulty: {{.Level}}.`

var promptFuncs = template.FuncMap{"join": strings.Join}

func mustPrompt(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(promptFuncs).Parse(body + sharedContextTemplate))
}

var (
	listeningQuizPrompt = mustPrompt("listening_quiz", `Create {{.ItemCount}} listening comprehension questions.
For each question write a short spoken passage (audio_text, 2-4 sentences a narrator will read aloud),
one question about that passage, exactly 4 answer options, the index of the correct option (0-based),
and a one-sentence explanation of the answer.`)

	readingQuizPrompt = mustPrompt("reading_quiz", `Create one reading passage (6-10 sentences) followed by {{.ItemCount}} comprehension questions.
For each question give exactly 4 answer options, the index of the correct option (0-based),
and a one-sentence explanation of the answer. Questions must be answerable from the passage alone.`)

	flashcardsPrompt = mustPrompt("flashcards", `Create {{.ItemCount}} vocabulary flashcards.
Each card has a front (the word or phrase), a back (a concise definition or translation),
an example sentence using the word, and its part of speech.`)

	fillBlankPrompt = mustPrompt("fill_blank", `Create {{.ItemCount}} fill-in-the-blank grammar exercises.
Each item is a single sentence with exactly one blank written as "___", the word or phrase that
belongs in the blank (answer), and a short hint naming the grammar concept being tested.`)
)

// systemPrompt is shared by every format; the user prompt carries the
// format-specific instructions.
const systemPrompt = `You are an experienced language teacher authoring exercises for a learning platform.
Respond with a single JSON object conforming to the schema you are given. Do not include any text outside the JSON object.`

func renderPrompt(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}

// buildPromptData assembles the substitution context from the request, the
// resolved metadata context and the chosen difficulty bucket.
func buildPromptData(req *domain.GenerationRequest, mc *domain.MetadataContext, bucket domain.Difficulty) promptData {
	data := promptData{
		ItemCount:  req.ItemCount,
		Level:      domain.LevelLabel(bucket),
		Language:   mc.Language,
		SourceText: req.SourceText,
	}
	if req.SourceText == "" {
		data.BookTitle = mc.BookTitle
		data.ModuleTitles = mc.ModuleTitles
		data.Summaries = mc.Summaries
		data.Topics = mc.Topics
		data.Vocabulary = mc.Vocabulary
		data.GrammarPoints = mc.GrammarPoints
	}
	return data
}
