package nonesafe

import "sort"

// Kind tells whether a field holds a plain value or a nested record. It is
// fixed when the field is declared.
type Kind int

const (
	KindScalar Kind = iota // Supplied value or nil; never coerced.
	KindRecord             // Nested record, always materialized.
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	default:
		return "scalar"
	}
}

// Type describes the declared type of a field. *RecordType and the scalar
// descriptors below are the only implementations.
type Type interface {
	Kind() Kind
	Name() string
	// JSONType is the JSON Schema "type" keyword for this field ("" means any).
	JSONType() string
}

type scalarType struct {
	name     string
	jsonType string
}

func (s scalarType) Kind() Kind       { return KindScalar }
func (s scalarType) Name() string     { return s.name }
func (s scalarType) JSONType() string { return s.jsonType }

// Scalar returns a named scalar descriptor. The name is informational: values
// of scalar fields are passed through uninterpreted.
func Scalar(name, jsonType string) Type { return scalarType{name: name, jsonType: jsonType} }

// Built-in scalar descriptors.
var (
	Any    = Scalar("any", "")
	String = Scalar("string", "string")
	Int    = Scalar("int", "integer")
	Float  = Scalar("float", "number")
	Number = Scalar("number", "number")
	Bool   = Scalar("bool", "boolean")
	List   = Scalar("list", "array")
	Map    = Scalar("map", "object")
)

// ScalarByName resolves the built-in scalar descriptors by name.
func ScalarByName(name string) (Type, bool) {
	switch name {
	case "any":
		return Any, true
	case "string", "str":
		return String, true
	case "int", "integer":
		return Int, true
	case "float":
		return Float, true
	case "number":
		return Number, true
	case "bool", "boolean":
		return Bool, true
	case "list", "array":
		return List, true
	case "map", "object", "dict":
		return Map, true
	}
	return nil, false
}

// Field is one (name, type) entry of a schema.
type Field struct {
	Name string
	Type Type
}

// F constructs a Field.
func F(name string, t Type) Field { return Field{Name: name, Type: t} }

// Fields is an ordered list of field declarations.
type Fields []Field

// FieldsOf converts a Go map into Fields. Go maps carry no order, so the
// result is sorted by field name; use Fields directly to control order.
func FieldsOf(m map[string]Type) Fields {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make(Fields, 0, len(names))
	for _, n := range names {
		out = append(out, Field{Name: n, Type: m[n]})
	}
	return out
}

// KV is a named construction value.
type KV struct {
	Key   string
	Value any
}

// V constructs a KV.
func V(key string, value any) KV { return KV{Key: key, Value: value} }

// Pairs is an ordered list of construction values; later entries win.
type Pairs []KV
