package nonesafe_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/reoring/nonesafe"
)

func declareConfig(t *testing.T) *nonesafe.RecordType {
	t.Helper()
	db := nonesafe.MustDeclare("DB", nil, nonesafe.F("dsn", nonesafe.String), nonesafe.F("pool", nonesafe.Int))
	return nonesafe.MustDeclarePreserving("Config", nil,
		nonesafe.F("name", nonesafe.String),
		nonesafe.F("db", db),
	)
}

func TestDefaultJSONDriver(t *testing.T) {
	if got := nonesafe.CurrentJSONDriver().Name(); got != "encoding/json" {
		t.Fatalf("unexpected default driver: %s", got)
	}
}

func TestParseFrom_Basic(t *testing.T) {
	rt := declareConfig(t)
	r, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(`{"name":"svc","db":{"pool":4},"extra":[1,2]}`)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Get("name") != "svc" {
		t.Fatalf("name = %v", r.Get("name"))
	}
	if r.Path("db", "pool") != json.Number("4") {
		t.Fatalf("numbers must stay json.Number by default, got %#v", r.Path("db", "pool"))
	}
	if r.Path("db", "dsn") != nil {
		t.Fatalf("missing field must be nil")
	}
	m, err := r.ToMapping()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extra, ok := m["extra"].([]any); !ok || len(extra) != 2 {
		t.Fatalf("unknown key must be preserved, got %v", m)
	}
}

func TestParseFrom_Float64Mode(t *testing.T) {
	rt := declareConfig(t)
	src := nonesafe.WithNumberMode(nonesafe.JSONBytes([]byte(`{"db":{"pool":4}}`)), nonesafe.NumberFloat64)
	r, err := nonesafe.ParseFrom(context.Background(), rt, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Path("db", "pool") != float64(4) {
		t.Fatalf("expected float64, got %#v", r.Path("db", "pool"))
	}
}

func TestParseFrom_NullAndEmpty(t *testing.T) {
	rt := declareConfig(t)
	r, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(`null`)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Equal(rt.Zero()) {
		t.Fatalf("null input must give defaults: %v", r)
	}

	_, err = nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(`[1]`)))
	iss, ok := nonesafe.AsIssues(err)
	if !ok || iss[0].Code != nonesafe.CodeInvalidType {
		t.Fatalf("array input must be invalid_type, got %v", err)
	}

	_, err = nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(`{"name":`)))
	iss, ok = nonesafe.AsIssues(err)
	if !ok || iss[0].Code != nonesafe.CodeParseError {
		t.Fatalf("truncated document must be parse_error, got %v", err)
	}
}

func TestParseFrom_DuplicateKeys(t *testing.T) {
	rt := declareConfig(t)
	doc := []byte(`{"db":{"pool":1,"pool":2}}`)

	_, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes(doc),
		nonesafe.ParseOpt{Strictness: nonesafe.Strictness{OnDuplicateKey: nonesafe.Error}})
	iss, ok := nonesafe.AsIssues(err)
	if !ok || iss[0].Code != nonesafe.CodeDuplicateKey || iss[0].Path != "/db/pool" {
		t.Fatalf("expected duplicate_key at /db/pool, got %v", err)
	}

	var warned []nonesafe.Issue
	r, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes(doc), nonesafe.ParseOpt{
		Strictness: nonesafe.Strictness{OnDuplicateKey: nonesafe.Warn},
		OnIssue:    func(is nonesafe.Issue) { warned = append(warned, is) },
	})
	if err != nil {
		t.Fatalf("warn must not fail: %v", err)
	}
	if len(warned) != 1 || warned[0].Path != "/db/pool" {
		t.Fatalf("expected one warning, got %v", warned)
	}
	if r.Path("db", "pool") != json.Number("2") {
		t.Fatalf("last duplicate wins, got %v", r.Path("db", "pool"))
	}

	if _, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes(doc)); err != nil {
		t.Fatalf("duplicates are ignored by default: %v", err)
	}
}

func TestParseFrom_MaxDepth(t *testing.T) {
	rt := declareConfig(t)
	_, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(`{"db":{"pool":1}}`)),
		nonesafe.ParseOpt{MaxDepth: 1})
	iss, ok := nonesafe.AsIssues(err)
	if !ok || iss[0].Path != "/db" {
		t.Fatalf("expected depth issue at /db, got %v", err)
	}
	if _, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(`{"db":{"pool":1}}`)),
		nonesafe.ParseOpt{MaxDepth: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStreamParse_MaxBytes(t *testing.T) {
	rt := declareConfig(t)
	doc := `{"name":"a-rather-long-service-name"}`
	_, err := nonesafe.StreamParse(context.Background(), rt, strings.NewReader(doc), nonesafe.ParseOpt{MaxBytes: 10})
	iss, ok := nonesafe.AsIssues(err)
	if !ok || iss[0].Code != nonesafe.CodeTruncated {
		t.Fatalf("expected truncated, got %v", err)
	}
	r, err := nonesafe.StreamParse(context.Background(), rt, strings.NewReader(doc), nonesafe.ParseOpt{MaxBytes: int64(len(doc))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Get("name") != "a-rather-long-service-name" {
		t.Fatalf("unexpected record: %v", r)
	}
}

func TestParseFrom_ContextAndNilSource(t *testing.T) {
	rt := declareConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := nonesafe.ParseFrom(ctx, rt, nonesafe.JSONBytes([]byte(`{}`))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := nonesafe.ParseFrom(context.Background(), rt, nil); err == nil {
		t.Fatalf("nil source must fail")
	}
}

func TestParseYAML(t *testing.T) {
	rt := declareConfig(t)
	doc := []byte("name: svc\ndb:\n  dsn: postgres://x\n  1: numeric-key\nlabels:\n  team: core\n2: two\n")
	r, err := nonesafe.ParseYAML(context.Background(), rt, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Path("db", "dsn") != "postgres://x" || r.Path("db", "pool") != nil {
		t.Fatalf("unexpected record: %v", r)
	}
	m, _ := r.ToMapping()
	if labels, ok := m["labels"].(map[string]any); !ok || labels["team"] != "core" {
		t.Fatalf("unknown mapping must be preserved as map[string]any, got %#v", m["labels"])
	}
	if m["2"] != "two" {
		t.Fatalf("non-string keys must be kept as strings, got %#v", m)
	}

	empty, err := nonesafe.ParseYAML(context.Background(), rt, nil)
	if err != nil || !empty.Equal(rt.Zero()) {
		t.Fatalf("empty YAML must give defaults: %v %v", empty, err)
	}

	_, err = nonesafe.ParseYAML(context.Background(), rt, doc, nonesafe.ParseOpt{MaxBytes: 4})
	if iss, ok := nonesafe.AsIssues(err); !ok || iss[0].Code != nonesafe.CodeTruncated {
		t.Fatalf("expected truncated, got %v", err)
	}

	_, err = nonesafe.ParseYAML(context.Background(), rt, []byte("name: [unclosed"))
	if iss, ok := nonesafe.AsIssues(err); !ok || iss[0].Code != nonesafe.CodeParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
}

func TestParseFrom_TrailingData(t *testing.T) {
	rt := declareConfig(t)
	for name, doc := range map[string]string{
		"garbage":      `{"name":"a"} junk`,
		"second value": `{"name":"a"} {"name":"b"}`,
	} {
		_, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte(doc)))
		if iss, ok := nonesafe.AsIssues(err); !ok || iss[0].Code != nonesafe.CodeParseError {
			t.Fatalf("%s: expected parse_error, got %v", name, err)
		}
		_, err = nonesafe.StreamParse(context.Background(), rt, strings.NewReader(doc))
		if iss, ok := nonesafe.AsIssues(err); !ok || iss[0].Code != nonesafe.CodeParseError {
			t.Fatalf("%s: stream: expected parse_error, got %v", name, err)
		}
	}
	if _, err := nonesafe.ParseFrom(context.Background(), rt, nonesafe.JSONBytes([]byte("{\"name\":\"a\"}\n\t "))); err != nil {
		t.Fatalf("trailing whitespace is allowed: %v", err)
	}
}
