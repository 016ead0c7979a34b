package engine

import (
	"io"
	"strconv"
)

// Raw is a decoder token with the delimiter already normalised, so that
// encoding/json and go-json decoders share one key/value tracker.
type Raw struct {
	Delim byte // '{', '}', '[', ']' or 0 for scalars.
	Value any  // string, bool or nil.
	// Number holds the text of numeric tokens (IsNum set).
	Number string
	IsNum  bool
}

// Lexer yields Raw tokens. Offset returns -1 when the decoder cannot tell.
type Lexer interface {
	Next() (Raw, error)
	Offset() int64
}

// FormatFloat renders float64 numbers for decoders not configured with UseNumber.
func FormatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// FromLexer turns a Lexer into a TokenSource, telling object keys from
// string values.
func FromLexer(l Lexer) TokenSource { return &lexerSource{lex: l} }

type frame struct {
	object       bool
	expectingKey bool
}

type lexerSource struct {
	lex   Lexer
	stack []frame
}

func (s *lexerSource) NextToken() (Token, error) {
	raw, err := s.lex.Next()
	if err != nil {
		if err == io.EOF {
			return Token{}, io.EOF
		}
		return Token{}, err
	}
	off := s.lex.Offset()
	switch raw.Delim {
	case '{':
		s.stack = append(s.stack, frame{object: true, expectingKey: true})
		return Token{Kind: KindBeginObject, Offset: off}, nil
	case '[':
		s.stack = append(s.stack, frame{})
		return Token{Kind: KindBeginArray, Offset: off}, nil
	case '}', ']':
		if n := len(s.stack); n > 0 {
			s.stack = s.stack[:n-1]
		}
		s.valueDone()
		if raw.Delim == '}' {
			return Token{Kind: KindEndObject, Offset: off}, nil
		}
		return Token{Kind: KindEndArray, Offset: off}, nil
	}
	if raw.IsNum {
		s.valueDone()
		return Token{Kind: KindNumber, Number: raw.Number, Offset: off}, nil
	}
	switch v := raw.Value.(type) {
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].object && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return Token{Kind: KindKey, String: v, Offset: off}, nil
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	default:
		s.valueDone()
		return Token{Kind: KindNull, Offset: off}, nil
	}
}

// valueDone marks the enclosing object as waiting for its next key.
func (s *lexerSource) valueDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].object {
		s.stack[n-1].expectingKey = true
	}
}

func (s *lexerSource) Location() int64 { return s.lex.Offset() }
