package nonesafe

import (
	"fmt"
	"reflect"
)

// New constructs a record from src and named values. src may be nil, a
// mapping (map[string]any, map[any]any with string keys, or any map keyed by
// a string kind) or key/value pairs (Pairs, []KV, [][2]any, []any of
// two-element pairs as decoded from JSON arrays, or any slice of two-element
// slices or arrays keyed by a string, such as [][]any). named values are applied on
// top of src and win on collision.
//
// Keys that are not declared fields are dropped; preserving types keep them in
// the Original Values Store for ToMapping. Every declared field is present in
// the result: nested record fields are constructed recursively (or reused
// when an already built *Record is supplied) and scalar fields default to nil.
//
// The only error is an unsupported input shape, reported as an invalid_type
// issue at the path of the offending (possibly nested) field.
func (t *RecordType) New(src any, named ...KV) (*Record, error) {
	return t.construct(Root(), src, named)
}

// MustNew is New that panics on error.
func (t *RecordType) MustNew(src any, named ...KV) *Record {
	r, err := t.New(src, named...)
	if err != nil {
		panic(err)
	}
	return r
}

// Zero constructs a record with no supplied values: scalar fields are nil and
// nested record fields are Zero records of their own type, to every depth.
func (t *RecordType) Zero() *Record {
	r := t.alloc(map[string]any{})
	for _, f := range t.fields {
		if rt, ok := f.Type.(*RecordType); ok {
			r.values[f.Name] = rt.Zero()
			continue
		}
		r.values[f.Name] = nil
	}
	return r
}

func (t *RecordType) alloc(merged map[string]any) *Record {
	r := &Record{typ: t, values: make(map[string]any, len(t.fields))}
	if t.preserving {
		// merged is always a private copy of the caller's input.
		r.original = merged
	}
	return r
}

func (t *RecordType) construct(at PathRef, src any, named []KV) (*Record, error) {
	merged, err := valuesFrom(at, src)
	if err != nil {
		return nil, err
	}
	for _, kv := range named {
		merged[kv.Key] = kv.Value
	}
	for k, v := range merged {
		if rec, ok := v.(*Record); ok && rec == nil {
			merged[k] = nil
		}
	}
	r := t.alloc(merged)
	// Unknown keys are filtered by only ever reading declared names.
	for _, f := range t.fields {
		v, supplied := merged[f.Name]
		rv, err := resolveField(at.Field(f.Name), f.Type, v, supplied)
		if err != nil {
			return nil, err
		}
		r.values[f.Name] = rv
	}
	return r, nil
}

// resolveField applies the per-field rule shared by construction and Set.
func resolveField(at PathRef, ft Type, v any, supplied bool) (any, error) {
	rt, ok := ft.(*RecordType)
	if !ok {
		// A nil *Record (as returned by Record for a missing name) is absence.
		if nested, isRec := v.(*Record); !supplied || (isRec && nested == nil) {
			return nil, nil
		}
		return v, nil
	}
	if nested, ok := v.(*Record); ok {
		if nested != nil {
			return nested, nil
		}
		return rt.Zero(), nil
	}
	if !supplied || v == nil {
		return rt.Zero(), nil
	}
	return rt.construct(at, v, nil)
}

// valuesFrom copies a construction source into a fresh map.
func valuesFrom(at PathRef, src any) (map[string]any, error) {
	switch s := src.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		out := make(map[string]any, len(s))
		for k, v := range s {
			out[k] = v
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(s))
		for k, v := range s {
			ks, ok := k.(string)
			if !ok {
				return nil, Issues{at.Issue(CodeInvalidType, fmt.Sprintf("mapping key %v (%T) is not a string", k, k))}
			}
			out[ks] = v
		}
		return out, nil
	case Pairs:
		return pairsFrom(s), nil
	case []KV:
		return pairsFrom(s), nil
	case [][2]any:
		out := make(map[string]any, len(s))
		for i, p := range s {
			k, ok := p[0].(string)
			if !ok {
				return nil, Issues{at.Issue(CodeInvalidType, fmt.Sprintf("pair %d key %v (%T) is not a string", i, p[0], p[0]))}
			}
			out[k] = p[1]
		}
		return out, nil
	case []any:
		out := make(map[string]any, len(s))
		for i, e := range s {
			k, v, ok := pairOf(e)
			if !ok {
				return nil, Issues{at.Issue(CodeInvalidType, fmt.Sprintf("element %d is not a (string, value) pair", i), "index", i)}
			}
			out[k] = v
		}
		return out, nil
	case *Record:
		return nil, Issues{at.Issue(CodeInvalidType, "a record is not a construction source; pass it as a field value or use Canonical()")}
	}

	rv := reflect.ValueOf(src)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out[it.Key().String()] = it.Value().Interface()
		}
		return out, nil
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			k, v, ok := reflectPair(rv.Index(i))
			if !ok {
				return nil, Issues{at.Issue(CodeInvalidType, fmt.Sprintf("element %d is not a (string, value) pair", i), "index", i)}
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, Issues{at.Issue(CodeInvalidType, fmt.Sprintf("expected mapping or key/value pairs, got %T", src))}
}

// reflectPair reads a two-element slice or array whose first element is a
// string, such as an element of [][]any or [][2]string.
func reflectPair(e reflect.Value) (string, any, bool) {
	for e.Kind() == reflect.Interface && !e.IsNil() {
		e = e.Elem()
	}
	if k := e.Kind(); (k != reflect.Slice && k != reflect.Array) || e.Len() != 2 {
		return "", nil, false
	}
	key := e.Index(0)
	for key.Kind() == reflect.Interface && !key.IsNil() {
		key = key.Elem()
	}
	if key.Kind() != reflect.String {
		return "", nil, false
	}
	return key.String(), e.Index(1).Interface(), true
}

func pairsFrom(kvs []KV) map[string]any {
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func pairOf(e any) (string, any, bool) {
	switch p := e.(type) {
	case KV:
		return p.Key, p.Value, true
	case [2]any:
		k, ok := p[0].(string)
		return k, p[1], ok
	case []any:
		if len(p) != 2 {
			return "", nil, false
		}
		k, ok := p[0].(string)
		return k, p[1], ok
	}
	return "", nil, false
}
