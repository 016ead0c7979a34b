package jsonschema

// Schema is the subset of JSON Schema needed to describe record types.
type Schema struct {
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Type is a string ("object") or a list (["integer","null"]).
	Type any `json:"type,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	// PropertyOrder keeps declaration order, which JSON object keys lose.
	PropertyOrder []string `json:"x-property-order,omitempty"`
}

// Draft is the $schema URI emitted for top-level documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Nullable returns a Type value accepting t or null; an empty t accepts anything.
func Nullable(t string) any {
	if t == "" {
		return nil
	}
	return []string{t, "null"}
}
