package nonesafe

import (
	"fmt"
	"reflect"
	"strings"
)

// Record is an instance of a RecordType. Every declared field is always
// present; the absence sentinel is nil. Records own their nested records.
//
// Accessors are nil-safe so chains such as r.Record("a").Get("b") never
// panic, and a Record is not safe for concurrent mutation.
type Record struct {
	typ    *RecordType
	values map[string]any
	// original is the Original Values Store (preserving types only).
	original map[string]any
}

// Type returns the record's type, or nil for a nil record.
func (r *Record) Type() *RecordType {
	if r == nil {
		return nil
	}
	return r.typ
}

// Get returns the value of a field. Unknown names and nil records yield nil.
func (r *Record) Get(name string) any {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of a field and whether name is a declared field.
func (r *Record) Lookup(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[name]
	return v, ok
}

// Record returns the nested record held by a field, or nil when the field is
// unknown or scalar.
func (r *Record) Record(name string) *Record {
	nested, _ := r.Get(name).(*Record)
	return nested
}

// Path walks nested record fields and returns the value of the last name.
// It returns nil as soon as a hop is not a record.
func (r *Record) Path(names ...string) any {
	if len(names) == 0 {
		return r
	}
	cur := r
	for _, n := range names[:len(names)-1] {
		cur = cur.Record(n)
		if cur == nil {
			return nil
		}
	}
	return cur.Get(names[len(names)-1])
}

// Set replaces the value of a declared field using the same rule as
// construction: record fields build a nested record from mappings and default
// on nil. It never touches the Original Values Store.
func (r *Record) Set(name string, v any) error {
	if r == nil {
		return Issues{Root().Field(name).Issue(CodeUnknownKey, "nil record")}
	}
	ft, ok := r.typ.Field(name)
	if !ok {
		return Issues{Root().Field(name).Issue(CodeUnknownKey, fmt.Sprintf("%s has no field %q", r.typ.name, name), "type", r.typ.name)}
	}
	rv, err := resolveField(Root().Field(name), ft, v, true)
	if err != nil {
		return err
	}
	r.values[name] = rv
	return nil
}

// Each calls fn for every field in declaration order until fn returns false.
func (r *Record) Each(fn func(name string, v any) bool) {
	if r == nil {
		return
	}
	for _, f := range r.typ.fields {
		if !fn(f.Name, r.values[f.Name]) {
			return
		}
	}
}

// Equal reports whether both records have the same type name and field-wise
// equal values, comparing nested records recursively. Original Values Stores
// are not compared.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.typ.name != o.typ.name || len(r.typ.fields) != len(o.typ.fields) {
		return false
	}
	for _, f := range r.typ.fields {
		ov, ok := o.values[f.Name]
		if !ok {
			return false
		}
		v := r.values[f.Name]
		if rn, ok := v.(*Record); ok {
			on, ok := ov.(*Record)
			if !ok || !rn.Equal(on) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// String renders the record as Name(field=value, ...) in declaration order,
// e.g. A(c=C(d=nil)). It is meant for logs and debugging only.
func (r *Record) String() string {
	if r == nil {
		return "nil"
	}
	b := &strings.Builder{}
	r.format(b)
	return b.String()
}

func (r *Record) format(b *strings.Builder) {
	b.WriteString(r.typ.name)
	b.WriteByte('(')
	for i, f := range r.typ.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		switch v := r.values[f.Name].(type) {
		case nil:
			b.WriteString("nil")
		case *Record:
			v.format(b)
		case string:
			fmt.Fprintf(b, "%q", v)
		default:
			fmt.Fprintf(b, "%v", v)
		}
	}
	b.WriteByte(')')
}

// OnNone returns v as a T, or otherwise when v is nil or not a T.
//
//	port := nonesafe.OnNone(cfg.Path("server", "port"), 8080)
func OnNone[T any](v any, otherwise T) T {
	if t, ok := v.(T); ok {
		return t
	}
	return otherwise
}
