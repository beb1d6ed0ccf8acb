package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidResponse indicates the provider's raw payload did not conform to
// the caller's schema. It is a response error: callers treat it like any other
// failed provider result rather than retrying the same attempt.
var ErrInvalidResponse = errors.New("response does not conform to schema")

// Validate checks raw against s and returns the typed Object.
//
// Scalars and nested objects are strict: a missing required field or a type
// mismatch fails the whole response. Arrays are salvaging: elements that do
// not conform to the declared item schema are discarded, elements beyond
// MaxItems are truncated, and only the filtered array must still satisfy
// MinItems. Providers routinely emit a few malformed elements in an otherwise
// usable list; discarding them lets callers keep the valid remainder.
func Validate(raw json.RawMessage, s *Schema) (Object, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidResponse, err)
	}
	root, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidResponse)
	}
	return validateObject(root, s, "")
}

func validateObject(m map[string]any, s *Schema, path string) (Object, error) {
	out := make(Object, len(s.Fields))
	for _, f := range s.Fields {
		fieldPath := f.Name
		if path != "" {
			fieldPath = path + "." + f.Name
		}

		rawVal, present := m[f.Name]
		if !present || rawVal == nil {
			if f.Required {
				return nil, fmt.Errorf("%w: missing required field %q", ErrInvalidResponse, fieldPath)
			}
			continue
		}

		v, err := validateField(rawVal, f, fieldPath)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func validateField(rawVal any, f Field, path string) (Value, error) {
	switch f.Type {
	case TypeString:
		s, ok := rawVal.(string)
		if !ok {
			return Value{}, typeMismatch(path, "string", rawVal)
		}
		return Value{kind: KindString, str: s}, nil

	case TypeInteger:
		n, ok := rawVal.(float64)
		if !ok || n != math.Trunc(n) {
			return Value{}, typeMismatch(path, "integer", rawVal)
		}
		return Value{kind: KindInt, num: n}, nil

	case TypeNumber:
		n, ok := rawVal.(float64)
		if !ok {
			return Value{}, typeMismatch(path, "number", rawVal)
		}
		return Value{kind: KindNumber, num: n}, nil

	case TypeBoolean:
		b, ok := rawVal.(bool)
		if !ok {
			return Value{}, typeMismatch(path, "boolean", rawVal)
		}
		return Value{kind: KindBool, b: b}, nil

	case TypeArray:
		return validateArray(rawVal, f, path)

	case TypeObject:
		m, ok := rawVal.(map[string]any)
		if !ok {
			return Value{}, typeMismatch(path, "object", rawVal)
		}
		obj, err := validateObject(m, &Schema{Fields: f.Fields}, path)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindObject, obj: obj}, nil

	default:
		return Value{}, fmt.Errorf("%w: field %q has unknown schema type %q", ErrInvalidResponse, path, f.Type)
	}
}

func validateArray(rawVal any, f Field, path string) (Value, error) {
	elems, ok := rawVal.([]any)
	if !ok {
		return Value{}, typeMismatch(path, "array", rawVal)
	}

	kept := make([]Object, 0, len(elems))
	for i, e := range elems {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		obj, err := validateObject(m, f.Items, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			// Nonconforming element: drop it and keep the remainder.
			continue
		}
		kept = append(kept, obj)
		if f.MaxItems > 0 && len(kept) == f.MaxItems {
			break
		}
	}

	if len(kept) < f.MinItems {
		return Value{}, fmt.Errorf("%w: field %q has %d conforming elements, need at least %d",
			ErrInvalidResponse, path, len(kept), f.MinItems)
	}
	return Value{kind: KindArray, arr: kept}, nil
}

func typeMismatch(path, want string, got any) error {
	return fmt.Errorf("%w: field %q is not a %s (got %T)", ErrInvalidResponse, path, want, got)
}
