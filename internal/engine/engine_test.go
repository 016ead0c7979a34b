package engine_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	eng "github.com/reoring/nonesafe/internal/engine"
	jsonsrc "github.com/reoring/nonesafe/source/json"
)

func TestDecodeAny_Shapes(t *testing.T) {
	v, err := eng.DecodeAny(jsonsrc.NewBytes([]byte(`{"a":[1,"x",true,null,{}],"b":{"c":"d"},"e":[]}`)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"a": []any{json.Number("1"), "x", true, nil, map[string]any{}},
		"b": map[string]any{"c": "d"},
		"e": []any{},
	}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestDecodeAny_StringValuesAreNotKeys(t *testing.T) {
	v, err := eng.DecodeAny(jsonsrc.NewBytes([]byte(`{"k":"v","k2":["s",{"in":"x"}],"k3":"w"}`)), eng.Float64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]any)
	if m["k"] != "v" || m["k3"] != "w" {
		t.Fatalf("got %#v", m)
	}
}

func TestDecodeAny_Float64(t *testing.T) {
	v, err := eng.DecodeAny(jsonsrc.NewBytes([]byte(`[1.5, 2]`)), eng.Float64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(v, []any{1.5, float64(2)}) {
		t.Fatalf("got %#v", v)
	}
}

func decodeEnforced(doc string, opt eng.EnforceOptions) (any, error) {
	return eng.DecodeAny(eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(doc)), opt), nil)
}

func TestEnforce_DuplicateKeys(t *testing.T) {
	doc := `{"a":{"b":1,"b":2},"l":[{"x":1,"x":2}]}`

	var sunk []eng.SimpleIssue
	if _, err := decodeEnforced(doc, eng.EnforceOptions{OnDuplicate: eng.DupWarn, IssueSink: func(si eng.SimpleIssue) { sunk = append(sunk, si) }}); err != nil {
		t.Fatalf("warn must not fail: %v", err)
	}
	if len(sunk) != 2 || sunk[0].Path != "/a/b" || sunk[1].Path != "/l/0/x" {
		t.Fatalf("unexpected issues: %+v", sunk)
	}

	_, err := decodeEnforced(doc, eng.EnforceOptions{OnDuplicate: eng.DupError})
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Code != "duplicate_key" || ie.Path != "/a/b" {
		t.Fatalf("expected duplicate_key at /a/b, got %v", err)
	}
}

func TestEnforce_SameKeyInSiblingObjects(t *testing.T) {
	if _, err := decodeEnforced(`[{"a":1},{"a":2}]`, eng.EnforceOptions{OnDuplicate: eng.DupError}); err != nil {
		t.Fatalf("sibling objects are separate scopes: %v", err)
	}
}

func TestEnforce_PointerEscaping(t *testing.T) {
	_, err := decodeEnforced(`{"a/b":{"c~d":1,"c~d":1}}`, eng.EnforceOptions{OnDuplicate: eng.DupError})
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Path != "/a~1b/c~0d" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnforce_MaxDepthAndBytes(t *testing.T) {
	_, err := decodeEnforced(`{"a":[[1]]}`, eng.EnforceOptions{MaxDepth: 2})
	var ie eng.IssueError
	if !errors.As(err, &ie) || ie.Path != "/a/0" {
		t.Fatalf("expected depth error at /a/0, got %v", err)
	}
	if _, err := decodeEnforced(`{"a":[[1]]}`, eng.EnforceOptions{MaxDepth: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = decodeEnforced(`{"a":"0123456789012345678901234567890123456789"}`, eng.EnforceOptions{MaxBytes: 8})
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("expected truncated, got %v", err)
	}
}

func TestEnforceOptions_Disabled(t *testing.T) {
	if !(eng.EnforceOptions{}).Disabled() {
		t.Fatalf("zero options must be disabled")
	}
	if (eng.EnforceOptions{MaxDepth: 1}).Disabled() {
		t.Fatalf("depth limit enables enforcement")
	}
}

func TestExpectEOF(t *testing.T) {
	src := jsonsrc.NewBytes([]byte(`{"a":1}  `))
	if _, err := eng.DecodeAny(src, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := eng.ExpectEOF(src); err != nil {
		t.Fatalf("whitespace only must be EOF: %v", err)
	}

	src = jsonsrc.NewBytes([]byte(`{"a":1} [2]`))
	if _, err := eng.DecodeAny(src, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ie eng.IssueError
	if err := eng.ExpectEOF(src); !errors.As(err, &ie) || ie.Code != "parse_error" {
		t.Fatalf("expected parse_error, got %v", err)
	}
}
