package structured

import "fmt"

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is a schema-checked tagged variant. Values only exist as the output
// of Validate, so holding one guarantees its kind matched the schema.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Object
	obj  Object
}

// Kind reports the variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// Object is a validated schema object. Accessor methods panic on a field the
// schema did not declare with that type; validated code paths never hit those
// panics, so they indicate a schema/accessor mismatch in the caller.
type Object map[string]Value

// Has reports whether the (optional) field was present in the response.
func (o Object) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// String returns the string field name, or "" when an optional field is
// absent.
func (o Object) String(name string) string {
	v, ok := o[name]
	if !ok {
		return ""
	}
	if v.kind != KindString {
		panic(fmt.Sprintf("structured: field %q is not a string", name))
	}
	return v.str
}

// Int returns the integer field name, or 0 when an optional field is absent.
func (o Object) Int(name string) int {
	v, ok := o[name]
	if !ok {
		return 0
	}
	if v.kind != KindInt {
		panic(fmt.Sprintf("structured: field %q is not an integer", name))
	}
	return int(v.num)
}

// Number returns the numeric field name, or 0 when an optional field is
// absent.
func (o Object) Number(name string) float64 {
	v, ok := o[name]
	if !ok {
		return 0
	}
	if v.kind != KindNumber && v.kind != KindInt {
		panic(fmt.Sprintf("structured: field %q is not a number", name))
	}
	return v.num
}

// Bool returns the boolean field name, or false when an optional field is
// absent.
func (o Object) Bool(name string) bool {
	v, ok := o[name]
	if !ok {
		return false
	}
	if v.kind != KindBool {
		panic(fmt.Sprintf("structured: field %q is not a boolean", name))
	}
	return v.b
}

// Array returns the object-array field name, or nil when an optional field is
// absent.
func (o Object) Array(name string) []Object {
	v, ok := o[name]
	if !ok {
		return nil
	}
	if v.kind != KindArray {
		panic(fmt.Sprintf("structured: field %q is not an array", name))
	}
	return v.arr
}

// Object returns the nested-object field name, or nil when an optional field
// is absent.
func (o Object) Object(name string) Object {
	v, ok := o[name]
	if !ok {
		return nil
	}
	if v.kind != KindObject {
		panic(fmt.Sprintf("structured: field %q is not an object", name))
	}
	return v.obj
}
