package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives non-fatal issues (duplicate key warnings).
	IssueSink func(SimpleIssue)
}

// Disabled reports whether the options would never reject or report anything.
func (o EnforceOptions) Disabled() bool {
	return o.OnDuplicate == DupIgnore && o.MaxDepth == 0 && o.MaxBytes == 0
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type scope struct {
	object  bool
	path    string
	keys    map[string]struct{}
	pending string // key awaiting its value (objects)
	next    int    // next element index (arrays)
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []scope
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.valuePath()
		e.stack = append(e.stack, scope{object: tok.Kind == KindBeginObject, path: path, keys: map[string]struct{}{}})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{Code: "parse_error", Path: pointer(path), Message: "max depth exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				si := SimpleIssue{Code: "duplicate_key", Path: pointer(join(top.path, tok.String)), Message: "key '" + tok.String + "' duplicated"}
				if e.opt.IssueSink != nil {
					e.opt.IssueSink(si)
				}
				if e.opt.OnDuplicate == DupError {
					return Token{}, IssueError{si}
				}
			}
			top.keys[tok.String] = struct{}{}
			top.pending = tok.String
		}
	default:
		e.valuePath()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, IssueError{SimpleIssue{Code: "truncated", Path: "/", Message: "max bytes exceeded"}}
		}
	}
	return tok, nil
}

// valuePath returns the pointer of the value starting at the current token
// and advances the enclosing container.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.object {
		p := join(top.path, top.pending)
		top.pending = ""
		return p
	}
	p := join(top.path, strconv.Itoa(top.next))
	top.next++
	return p
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func join(base, token string) string { return base + "/" + pointerEscaper.Replace(token) }

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
