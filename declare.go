package nonesafe

import "strings"

// ReservedOriginalKey is the field name preserving record types keep for the
// Original Values Store. DeclarePreserving rejects fields with this name.
const ReservedOriginalKey = "_original"

// RecordType is a record shape produced by Declare. It is immutable after
// declaration and may be shared freely; each Declare call yields a distinct
// RecordType even for identical input.
type RecordType struct {
	name       string
	fields     []Field
	index      map[string]int
	preserving bool
}

var _ Type = (*RecordType)(nil)

func (t *RecordType) Kind() Kind       { return KindRecord }
func (t *RecordType) Name() string     { return t.name }
func (t *RecordType) JSONType() string { return "object" }

// Preserving reports whether records of this type keep their original input
// for ToMapping.
func (t *RecordType) Preserving() bool { return t.preserving }

// Fields returns a copy of the schema in declaration order.
func (t *RecordType) Fields() Fields { return append(Fields(nil), t.fields...) }

// Field returns the declared type of a field.
func (t *RecordType) Field(name string) (Type, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i].Type, true
}

// Has reports whether name is a declared field.
func (t *RecordType) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// String renders the schema, e.g. A{c: C, b: int}.
func (t *RecordType) String() string {
	b := &strings.Builder{}
	b.WriteString(t.name)
	b.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.Name())
	}
	b.WriteByte('}')
	return b.String()
}

// Declare creates a record type named name. Field definitions come from the
// ordered fields list and from named; a named field replaces a listed field of
// the same name in place, other named fields are appended.
//
// Errors are returned as Issues at declaration time: no_fields when the merged
// schema is empty, invalid_field for an empty name or nil type.
func Declare(name string, fields Fields, named ...Field) (*RecordType, error) {
	return declare(name, false, fields, named)
}

// DeclarePreserving is Declare for the serialization-capable variant: records
// keep a copy of every supplied value (unknown keys included) and support
// ToMapping. A field named ReservedOriginalKey fails with reserved_field.
func DeclarePreserving(name string, fields Fields, named ...Field) (*RecordType, error) {
	return declare(name, true, fields, named)
}

// MustDeclare is Declare that panics on error.
func MustDeclare(name string, fields Fields, named ...Field) *RecordType {
	t, err := Declare(name, fields, named...)
	if err != nil {
		panic(err)
	}
	return t
}

// MustDeclarePreserving is DeclarePreserving that panics on error.
func MustDeclarePreserving(name string, fields Fields, named ...Field) *RecordType {
	t, err := DeclarePreserving(name, fields, named...)
	if err != nil {
		panic(err)
	}
	return t
}

func declare(name string, preserving bool, fields Fields, named []Field) (*RecordType, error) {
	root := Root()
	merged := make([]Field, 0, len(fields)+len(named))
	index := make(map[string]int, len(fields)+len(named))
	put := func(f Field) {
		if i, ok := index[f.Name]; ok {
			merged[i].Type = f.Type
			return
		}
		index[f.Name] = len(merged)
		merged = append(merged, f)
	}
	for _, f := range fields {
		put(f)
	}
	for _, f := range named {
		put(f)
	}

	if len(merged) == 0 {
		return nil, Issues{root.Issue(CodeNoFields, "declare at least one field", "type", name)}
	}
	var iss Issues
	for _, f := range merged {
		switch {
		case f.Name == "":
			iss = AppendIssues(iss, root.Issue(CodeInvalidField, "field name must not be empty", "type", name))
		case f.Type == nil:
			iss = AppendIssues(iss, root.Field(f.Name).Issue(CodeInvalidField, "field type must not be nil", "type", name, "field", f.Name))
		case preserving && f.Name == ReservedOriginalKey:
			iss = AppendIssues(iss, root.Field(f.Name).Issue(CodeReservedField, ReservedOriginalKey+" is reserved for the original values store", "type", name, "field", f.Name))
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return &RecordType{name: name, fields: merged, index: index, preserving: preserving}, nil
}

// recordBuilder is the fluent counterpart of Declare.
type recordBuilder struct {
	name       string
	fields     Fields
	named      []Field
	preserving bool
}

// Define starts a builder for a record type named name.
//
//	server := nonesafe.Define("Server").
//	    Field("host", nonesafe.String).
//	    Field("tls", tls).
//	    Preserving().
//	    MustBuild()
func Define(name string) *recordBuilder { return &recordBuilder{name: name} }

// Field appends a named field; it overrides earlier declarations of the same name.
func (b *recordBuilder) Field(name string, t Type) *recordBuilder {
	b.named = append(b.named, Field{Name: name, Type: t})
	return b
}

// Fields sets the ordered base field list.
func (b *recordBuilder) Fields(fs Fields) *recordBuilder {
	b.fields = append(b.fields, fs...)
	return b
}

// Preserving selects the serialization-capable variant.
func (b *recordBuilder) Preserving() *recordBuilder {
	b.preserving = true
	return b
}

// Build validates the builder and returns the RecordType.
func (b *recordBuilder) Build() (*RecordType, error) {
	return declare(b.name, b.preserving, b.fields, b.named)
}

// MustBuild is Build that panics on error.
func (b *recordBuilder) MustBuild() *RecordType {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
