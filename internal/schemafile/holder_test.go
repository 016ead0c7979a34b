package schemafile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeSchema(t *testing.T, path, doc string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}
}

func TestHolder_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	writeSchema(t, path, "types:\n  A:\n    fields: {x: int}\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	var changed, failed int
	h.OnChange(func(*Set) { changed++ })
	h.OnError(func(error) { failed++ })

	writeSchema(t, path, "types:\n  A:\n    fields: {x: int}\n  B:\n    fields: {y: A}\n")
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := h.Get().Type("B"); !ok || changed != 1 {
		t.Fatalf("B must be declared after reload (changed=%d)", changed)
	}

	writeSchema(t, path, "types:\n  A:\n    fields: {x: Missing}\n")
	if err := h.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if _, ok := h.Get().Type("B"); !ok || failed != 1 {
		t.Fatalf("failed reload must keep the previous types (failed=%d)", failed)
	}
}

func TestNewHolder_Errors(t *testing.T) {
	if _, err := NewHolder(filepath.Join(t.TempDir(), "absent.yaml"), zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestHolder_WatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	writeSchema(t, path, "types:\n  A:\n    fields: {x: int}\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	reloaded := make(chan *Set, 8)
	h.OnChange(func(s *Set) { reloaded <- s })
	if err := h.WatchFile(); err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer h.Stop()

	writeSchema(t, path, "types:\n  Z:\n    fields: {x: int}\n")
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-reloaded:
			if _, ok := s.Type("Z"); ok {
				return
			}
		case <-deadline:
			t.Fatalf("schema change was not picked up")
		}
	}
}

func TestHolder_StopWhileWatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	writeSchema(t, path, "types:\n  A:\n    fields: {x: int}\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- h.WatchFile() }()
	h.Stop()
	<-done

	h.Stop()
	if err := h.WatchFile(); err == nil {
		t.Fatalf("WatchFile after Stop must fail")
	}
}
