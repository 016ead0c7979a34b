package gojson

import (
	"bytes"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/nonesafe"
	eng "github.com/reoring/nonesafe/internal/engine"
)

// Driver returns a nonesafe.JSONDriver backed by goccy/go-json.
func Driver() nonesafe.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) *nonesafe.Source {
	return nonesafe.SourceFromEngine(NewReader(r), nonesafe.NumberJSONNumber)
}
func (driverGoJSON) NewBytes(b []byte) *nonesafe.Source {
	return nonesafe.SourceFromEngine(NewBytes(b), nonesafe.NumberJSONNumber)
}
func (driverGoJSON) Name() string { return "go-json" }

type lexer struct{ dec *j.Decoder }

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return eng.FromLexer(&lexer{dec: dec})
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (l *lexer) Next() (eng.Raw, error) {
	tok, err := l.dec.Token()
	if err != nil {
		return eng.Raw{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		return eng.Raw{Delim: byte(v)}, nil
	case j.Number:
		return eng.Raw{Number: string(v), IsNum: true}, nil
	case float64:
		return eng.Raw{Number: eng.FormatFloat(v), IsNum: true}, nil
	}
	return eng.Raw{Value: tok}, nil
}

// go-json does not report decoder offsets; MaxBytes is enforced up front by
// StreamParse instead.
func (l *lexer) Offset() int64 { return -1 }
