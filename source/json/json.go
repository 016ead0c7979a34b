package json

import (
	"bytes"
	"encoding/json"
	"io"

	eng "github.com/reoring/nonesafe/internal/engine"
)

type lexer struct{ dec *json.Decoder }

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return eng.FromLexer(&lexer{dec: dec})
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (l *lexer) Next() (eng.Raw, error) {
	tok, err := l.dec.Token()
	if err != nil {
		return eng.Raw{}, err
	}
	switch v := tok.(type) {
	case json.Delim:
		return eng.Raw{Delim: byte(v)}, nil
	case json.Number:
		return eng.Raw{Number: string(v), IsNum: true}, nil
	case float64:
		return eng.Raw{Number: eng.FormatFloat(v), IsNum: true}, nil
	}
	return eng.Raw{Value: tok}, nil
}

func (l *lexer) Offset() int64 { return l.dec.InputOffset() }
