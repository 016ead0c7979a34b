// Package middleware fills JSON request bodies into records for net/http
// handlers. It plugs into any router accepting func(http.Handler) http.Handler
// (chi, gorilla, the standard mux wrapped by hand).
package middleware

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/nonesafe"
)

type ctxKeyRecord struct{}

// ContextWithRecord attaches r to the context.
func ContextWithRecord(ctx context.Context, r *nonesafe.Record) context.Context {
	return context.WithValue(ctx, ctxKeyRecord{}, r)
}

// RecordFromContext retrieves the record stored by Fill.
func RecordFromContext(ctx context.Context) (*nonesafe.Record, bool) {
	r, ok := ctx.Value(ctxKeyRecord{}).(*nonesafe.Record)
	return r, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at 1 MiB
func DefaultParseOpt() nonesafe.ParseOpt {
	return nonesafe.ParseOpt{
		Strictness: nonesafe.Strictness{OnDuplicateKey: nonesafe.Error},
		MaxBytes:   1 << 20,
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []nonesafe.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// Fill parses the request body as a record of type t, stores it in the request
// context on success, or answers 400 with the Issues payload. A zero opt means
// DefaultParseOpt.
func Fill(t *nonesafe.RecordType, opt nonesafe.ParseOpt) func(http.Handler) http.Handler {
	return FillFunc(func(*http.Request) (*nonesafe.RecordType, bool) { return t, true }, opt)
}

// TypeResolver picks the record type for a request.
type TypeResolver func(*http.Request) (*nonesafe.RecordType, bool)

// FillFunc is Fill with the record type resolved per request, for example from
// a URL parameter. Requests whose type cannot be resolved get 404.
func FillFunc(resolve TypeResolver, opt nonesafe.ParseOpt) func(http.Handler) http.Handler {
	if opt.Strictness.OnDuplicateKey == nonesafe.Ignore && opt.MaxBytes == 0 && opt.MaxDepth == 0 {
		opt = DefaultParseOpt()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			t, ok := resolve(req)
			if !ok {
				WriteJSON(w, http.StatusNotFound, map[string]any{"error": "unknown record type"})
				return
			}
			r, err := nonesafe.StreamParse(req.Context(), t, req.Body, opt)
			if err != nil {
				if iss, ok := nonesafe.AsIssues(err); ok {
					WriteJSON(w, http.StatusBadRequest, ErrorPayload(iss))
					return
				}
				WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, req.WithContext(ContextWithRecord(req.Context(), r)))
		})
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
