package nonesafe

import (
	js "github.com/reoring/nonesafe/jsonschema"
)

// JSONSchema projects the record type into a JSON Schema document. Scalar
// fields accept their JSON type or null, nested record types are inlined and
// unknown properties are allowed since construction drops (or preserves) them.
func (t *RecordType) JSONSchema() (*js.Schema, error) {
	s := t.schema()
	s.Schema = js.Draft
	return s, nil
}

func (t *RecordType) schema() *js.Schema {
	props := make(map[string]*js.Schema, len(t.fields))
	order := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		order = append(order, f.Name)
		if rt, ok := f.Type.(*RecordType); ok {
			props[f.Name] = rt.schema()
			continue
		}
		props[f.Name] = &js.Schema{Type: js.Nullable(f.Type.JSONType())}
	}
	return &js.Schema{
		Title:                t.name,
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: true,
		PropertyOrder:        order,
	}
}
