package structured

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizSchema() *Schema {
	return &Schema{
		Fields: []Field{
			{Name: "items", Type: TypeArray, Required: true, MinItems: 1, MaxItems: 20, Items: &Schema{
				Fields: []Field{
					{Name: "question", Type: TypeString, Required: true},
					{Name: "options", Type: TypeArray, Required: true, MinItems: 2, Items: &Schema{
						Fields: []Field{{Name: "text", Type: TypeString, Required: true}},
					}},
					{Name: "correct_index", Type: TypeInteger, Required: true},
					{Name: "explanation", Type: TypeString},
				},
			}},
		},
	}
}

func TestValidateScalars(t *testing.T) {
	t.Parallel()

	s := &Schema{Fields: []Field{
		{Name: "title", Type: TypeString, Required: true},
		{Name: "count", Type: TypeInteger, Required: true},
		{Name: "score", Type: TypeNumber, Required: true},
		{Name: "final", Type: TypeBoolean, Required: true},
		{Name: "note", Type: TypeString},
	}}

	obj, err := Validate(json.RawMessage(`{"title":"t","count":3,"score":0.5,"final":true}`), s)
	require.NoError(t, err)

	assert.Equal(t, "t", obj.String("title"))
	assert.Equal(t, 3, obj.Int("count"))
	assert.InDelta(t, 0.5, obj.Number("score"), 1e-9)
	assert.True(t, obj.Bool("final"))
	assert.False(t, obj.Has("note"))
	assert.Equal(t, "", obj.String("note"))
}

func TestValidateMissingRequiredField(t *testing.T) {
	t.Parallel()

	s := &Schema{Fields: []Field{{Name: "title", Type: TypeString, Required: true}}}
	_, err := Validate(json.RawMessage(`{}`), s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	assert.Contains(t, err.Error(), `"title"`)
}

func TestValidateTypeMismatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field Field
		raw   string
	}{
		{name: "string gets number", field: Field{Name: "f", Type: TypeString, Required: true}, raw: `{"f": 1}`},
		{name: "integer gets string", field: Field{Name: "f", Type: TypeInteger, Required: true}, raw: `{"f": "1"}`},
		{name: "integer gets fraction", field: Field{Name: "f", Type: TypeInteger, Required: true}, raw: `{"f": 1.5}`},
		{name: "boolean gets string", field: Field{Name: "f", Type: TypeBoolean, Required: true}, raw: `{"f": "true"}`},
		{name: "array gets object", field: Field{Name: "f", Type: TypeArray, Required: true, Items: &Schema{}}, raw: `{"f": {}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Validate(json.RawMessage(tc.raw), &Schema{Fields: []Field{tc.field}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidResponse))
		})
	}
}

func TestValidateNotJSON(t *testing.T) {
	t.Parallel()

	_, err := Validate(json.RawMessage(`not json`), &Schema{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))

	_, err = Validate(json.RawMessage(`[1,2]`), &Schema{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestValidateDropsMalformedArrayElements(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"items": [
		{"question": "q1", "options": [{"text": "a"}, {"text": "b"}], "correct_index": 0},
		{"question": "q2", "options": [{"text": "a"}], "correct_index": 0},
		{"question": 3, "options": [{"text": "a"}, {"text": "b"}], "correct_index": 0},
		{"question": "q4", "options": [{"text": "a"}, {"text": "b"}], "correct_index": 1, "explanation": "why"}
	]}`)

	obj, err := Validate(raw, quizSchema())
	require.NoError(t, err)

	items := obj.Array("items")
	// q2 has too few options and q3 has a non-string question; both dropped.
	require.Len(t, items, 2)
	assert.Equal(t, "q1", items[0].String("question"))
	assert.Equal(t, "q4", items[1].String("question"))
	assert.Equal(t, 1, items[1].Int("correct_index"))
	assert.Equal(t, "why", items[1].String("explanation"))
}

func TestValidateArrayMinItemsAfterFiltering(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"items": [{"question": 1}, {"question": 2}]}`)
	_, err := Validate(raw, quizSchema())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
	assert.Contains(t, err.Error(), "at least 1")
}

func TestValidateArrayTruncatesAtMaxItems(t *testing.T) {
	t.Parallel()

	s := &Schema{Fields: []Field{
		{Name: "items", Type: TypeArray, Required: true, MinItems: 1, MaxItems: 2, Items: &Schema{
			Fields: []Field{{Name: "v", Type: TypeInteger, Required: true}},
		}},
	}}

	obj, err := Validate(json.RawMessage(`{"items": [{"v":1},{"v":2},{"v":3}]}`), s)
	require.NoError(t, err)
	items := obj.Array("items")
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Int("v"))
	assert.Equal(t, 2, items[1].Int("v"))
}

func TestValidateNestedObject(t *testing.T) {
	t.Parallel()

	s := &Schema{Fields: []Field{
		{Name: "meta", Type: TypeObject, Required: true, Fields: []Field{
			{Name: "language", Type: TypeString, Required: true},
		}},
	}}

	obj, err := Validate(json.RawMessage(`{"meta": {"language": "en"}}`), s)
	require.NoError(t, err)
	assert.Equal(t, "en", obj.Object("meta").String("language"))

	_, err = Validate(json.RawMessage(`{"meta": {}}`), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meta.language")
}

func TestMarshalSchema(t *testing.T) {
	t.Parallel()

	raw, err := MarshalSchema(quizSchema())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, false, doc["additionalProperties"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	items, ok := props["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", items["type"])
	assert.Equal(t, float64(1), items["minItems"])
	assert.Equal(t, float64(20), items["maxItems"])
	require.Contains(t, items, "items")
}

func TestMarshalSchemaRejectsArrayWithoutItems(t *testing.T) {
	t.Parallel()

	_, err := MarshalSchema(&Schema{Fields: []Field{{Name: "xs", Type: TypeArray}}})
	require.Error(t, err)
}
