package nonesafe

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Declaration time (ConfigurationError family).
	CodeNoFields      = "no_fields"
	CodeReservedField = "reserved_field"
	CodeInvalidField  = "invalid_field"
	// Construction and access.
	CodeInvalidType = "invalid_type"
	CodeUnknownKey  = "unknown_key"
	// Inbound parsing.
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// ErrNotPreserving is returned by ToMapping on records whose type was not
// declared with DeclarePreserving; such records keep no Original Values Store.
// Use Canonical (or Encode with EncodeCanonical) for those.
var ErrNotPreserving = errors.New("nonesafe: record type is not preserving; declare it with DeclarePreserving")

// Issue represents a single declaration, construction or parse error.
type Issue struct {
	Path    string // JSON Pointer (for example: /server/tls/cert).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"type":"A","field":"_original"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. no_fields at /: no fields declared
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IsConfigurationError reports whether err was produced while declaring a
// record type (empty schema, reserved or invalid field name).
func IsConfigurationError(err error) bool {
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		return false
	}
	for _, it := range iss {
		switch it.Code {
		case CodeNoFields, CodeReservedField, CodeInvalidField:
		default:
			return false
		}
	}
	return true
}
