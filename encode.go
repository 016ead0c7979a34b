package nonesafe

import (
	json "github.com/goccy/go-json"
)

// ToMapping projects the record back into its Original Values Store and
// returns the store itself. For each declared field:
//   - a nested record is stored as its own mapping (ToMapping for preserving
//     nested types, Canonical otherwise);
//   - a non-nil value is stored as is;
//   - a nil value leaves the store untouched, so an originally supplied
//     entry survives and nothing is inserted.
//
// Keys supplied at construction that are not declared fields pass through
// unchanged. Calling ToMapping twice without mutation yields equal maps.
// Records of non-preserving types return ErrNotPreserving.
func (r *Record) ToMapping() (map[string]any, error) {
	if r == nil || !r.typ.preserving {
		return nil, ErrNotPreserving
	}
	for _, f := range r.typ.fields {
		switch v := r.values[f.Name].(type) {
		case nil:
		case *Record:
			r.original[f.Name] = v.mapping()
		default:
			r.original[f.Name] = v
		}
	}
	return r.original, nil
}

// mapping is the nested projection used by ToMapping.
func (r *Record) mapping() map[string]any {
	if r.typ.preserving {
		m, _ := r.ToMapping()
		return m
	}
	return r.Canonical()
}

// Canonical returns a fresh mapping of the current field values with nil
// fields omitted and nested records projected recursively. Unknown input keys
// are not included. It is available on every record.
func (r *Record) Canonical() map[string]any {
	return r.project(false)
}

// Full is Canonical with nil fields kept as nil (null in JSON), so the output
// lists every declared field at every depth.
func (r *Record) Full() map[string]any {
	return r.project(true)
}

func (r *Record) project(withNil bool) map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, len(r.typ.fields))
	for _, f := range r.typ.fields {
		switch v := r.values[f.Name].(type) {
		case nil:
			if withNil {
				out[f.Name] = nil
			}
		case *Record:
			out[f.Name] = v.project(withNil)
		default:
			out[f.Name] = v
		}
	}
	return out
}

// EncodeMode selects the mapping produced by Encode.
type EncodeMode int

const (
	EncodeCanonical EncodeMode = iota // Current values, nil omitted.
	EncodePreserve                    // ToMapping: current values over the original input.
	EncodeFull                        // Current values, nil kept.
)

// ParseEncodeMode maps "canonical", "preserve" and "full" to an EncodeMode.
func ParseEncodeMode(s string) (EncodeMode, bool) {
	switch s {
	case "", "canonical":
		return EncodeCanonical, true
	case "preserve", "preserving":
		return EncodePreserve, true
	case "full":
		return EncodeFull, true
	}
	return EncodeCanonical, false
}

// Encode returns the mapping for the given mode. EncodePreserve on a record of
// a non-preserving type returns ErrNotPreserving.
func Encode(r *Record, mode EncodeMode) (map[string]any, error) {
	switch mode {
	case EncodePreserve:
		return r.ToMapping()
	case EncodeFull:
		return r.Full(), nil
	default:
		return r.Canonical(), nil
	}
}

// MarshalJSON encodes ToMapping for preserving types and Canonical otherwise.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.defaultMapping())
}

// MarshalYAML implements yaml.Marshaler with the same projection as MarshalJSON.
func (r *Record) MarshalYAML() (any, error) {
	if r == nil {
		return nil, nil
	}
	return r.defaultMapping(), nil
}

func (r *Record) defaultMapping() map[string]any {
	if r.typ.preserving {
		m, _ := r.ToMapping()
		return m
	}
	return r.Canonical()
}
