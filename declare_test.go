package nonesafe_test

import (
	"errors"
	"testing"

	"github.com/reoring/nonesafe"
)

func TestDeclare_NoFields(t *testing.T) {
	_, err := nonesafe.Declare("Empty", nil)
	if err == nil {
		t.Fatalf("expected error for empty schema")
	}
	iss, ok := nonesafe.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != nonesafe.CodeNoFields {
		t.Fatalf("expected single no_fields issue, got %v", err)
	}
	if !nonesafe.IsConfigurationError(err) {
		t.Fatalf("no_fields must be a configuration error")
	}
	if iss[0].Message != "no fields declared" {
		t.Fatalf("unexpected message %q", iss[0].Message)
	}
}

func TestDeclare_ReservedFieldOnlyForPreserving(t *testing.T) {
	_, err := nonesafe.DeclarePreserving("P", nil, nonesafe.F(nonesafe.ReservedOriginalKey, nonesafe.Any))
	iss, ok := nonesafe.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != nonesafe.CodeReservedField {
		t.Fatalf("expected reserved_field, got %v", err)
	}
	if iss[0].Path != "/"+nonesafe.ReservedOriginalKey {
		t.Fatalf("unexpected path %q", iss[0].Path)
	}
	if !nonesafe.IsConfigurationError(err) {
		t.Fatalf("reserved_field must be a configuration error")
	}

	// The plain variant keeps no store, so the name is an ordinary field.
	if _, err := nonesafe.Declare("P", nil, nonesafe.F(nonesafe.ReservedOriginalKey, nonesafe.Any)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeclare_InvalidFields(t *testing.T) {
	_, err := nonesafe.Declare("Bad", nonesafe.Fields{{Name: "", Type: nonesafe.Int}, {Name: "x", Type: nil}})
	iss, ok := nonesafe.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("expected two issues, got %v", err)
	}
	for _, it := range iss {
		if it.Code != nonesafe.CodeInvalidField {
			t.Fatalf("expected invalid_field, got %s", it.Code)
		}
	}
}

func TestDeclare_NamedOverridesPositional(t *testing.T) {
	c := nonesafe.MustDeclare("C", nil, nonesafe.F("d", nonesafe.Int))
	rt, err := nonesafe.Declare("T",
		nonesafe.Fields{{Name: "a", Type: nonesafe.Int}, {Name: "b", Type: nonesafe.String}},
		nonesafe.F("a", c), nonesafe.F("z", nonesafe.Bool))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fs := rt.Fields()
	if len(fs) != 3 || fs[0].Name != "a" || fs[1].Name != "b" || fs[2].Name != "z" {
		t.Fatalf("unexpected field order: %v", fs)
	}
	if ft, _ := rt.Field("a"); ft != c {
		t.Fatalf("named field should replace the positional type, got %v", ft)
	}
	if got := rt.String(); got != "T{a: C, b: string, z: bool}" {
		t.Fatalf("unexpected String(): %s", got)
	}
}

func TestDeclare_FieldsOfSortsNames(t *testing.T) {
	rt := nonesafe.MustDeclare("M", nonesafe.FieldsOf(map[string]nonesafe.Type{"b": nonesafe.Int, "a": nonesafe.Int}))
	fs := rt.Fields()
	if fs[0].Name != "a" || fs[1].Name != "b" {
		t.Fatalf("expected sorted fields, got %v", fs)
	}
}

func TestDeclare_DistinctTypes(t *testing.T) {
	a1 := nonesafe.MustDeclare("A", nil, nonesafe.F("x", nonesafe.Int))
	a2 := nonesafe.MustDeclare("A", nil, nonesafe.F("x", nonesafe.Int))
	if a1 == a2 {
		t.Fatalf("each declaration must yield a distinct type")
	}
	if a1.Kind() != nonesafe.KindRecord || a1.Preserving() {
		t.Fatalf("unexpected kind/preserving: %v %v", a1.Kind(), a1.Preserving())
	}
}

func TestDefine_Builder(t *testing.T) {
	tls := nonesafe.Define("TLS").Field("cert", nonesafe.String).MustBuild()
	srv, err := nonesafe.Define("Server").
		Fields(nonesafe.Fields{{Name: "host", Type: nonesafe.String}}).
		Field("tls", tls).
		Preserving().
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !srv.Preserving() || !srv.Has("tls") || !srv.Has("host") {
		t.Fatalf("unexpected type: %v", srv)
	}
	if _, err := nonesafe.Define("Empty").Build(); !nonesafe.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestMustDeclare_Panics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !nonesafe.IsConfigurationError(err) {
			t.Fatalf("expected configuration error panic, got %v", r)
		}
	}()
	nonesafe.MustDeclare("Empty", nil)
}

func TestIsConfigurationError_Other(t *testing.T) {
	if nonesafe.IsConfigurationError(errors.New("x")) {
		t.Fatalf("plain errors are not configuration errors")
	}
	if nonesafe.IsConfigurationError(nonesafe.Issues{{Code: nonesafe.CodeInvalidType}}) {
		t.Fatalf("invalid_type is not a configuration error")
	}
}
