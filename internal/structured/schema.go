// Package structured turns an LLM provider call into a schema-checked value.
// Callers describe the object they expect with a Schema; the generator renders
// it as a JSON-schema document for the provider and validates the raw response
// into a typed Object, so no downstream code branches on untyped maps.
package structured

import (
	"encoding/json"
	"fmt"
)

// FieldType enumerates the value kinds a schema field may declare.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field describes one property of a schema object.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool

	// Items describes the element schema for TypeArray fields whose elements
	// are objects. MinItems/MaxItems bound the array cardinality; MaxItems 0
	// means unbounded.
	Items    *Schema
	MinItems int
	MaxItems int

	// Fields describes the nested schema for TypeObject fields.
	Fields []Field
}

// Schema describes a JSON object the caller expects back from a provider.
type Schema struct {
	Fields []Field
}

// MarshalSchema renders the schema as a JSON-schema document suitable for
// passing to a provider's structured-output mode.
func MarshalSchema(s *Schema) (json.RawMessage, error) {
	doc, err := schemaDoc(s)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding schema document: %w", err)
	}
	return raw, nil
}

func schemaDoc(s *Schema) (map[string]any, error) {
	properties := make(map[string]any, len(s.Fields))
	var required []string

	for _, f := range s.Fields {
		prop, err := fieldDoc(f)
		if err != nil {
			return nil, err
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc, nil
}

func fieldDoc(f Field) (map[string]any, error) {
	prop := map[string]any{"type": string(f.Type)}
	if f.Description != "" {
		prop["description"] = f.Description
	}

	switch f.Type {
	case TypeArray:
		if f.Items == nil {
			return nil, fmt.Errorf("array field %q requires an items schema", f.Name)
		}
		items, err := schemaDoc(f.Items)
		if err != nil {
			return nil, err
		}
		prop["items"] = items
		if f.MinItems > 0 {
			prop["minItems"] = f.MinItems
		}
		if f.MaxItems > 0 {
			prop["maxItems"] = f.MaxItems
		}
	case TypeObject:
		nested, err := schemaDoc(&Schema{Fields: f.Fields})
		if err != nil {
			return nil, err
		}
		for k, v := range nested {
			prop[k] = v
		}
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
	default:
		return nil, fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
	}
	return prop, nil
}
