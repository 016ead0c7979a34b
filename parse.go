package nonesafe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/nonesafe/internal/engine"
)

// ParseFrom decodes one JSON value from src and constructs a record of type t
// from it. Decoding honours opts (duplicate keys, depth and size limits);
// construction follows RecordType.New, so unknown keys are dropped or
// preserved and missing fields are defaulted.
func ParseFrom(ctx context.Context, t *RecordType, src *Source, opts ...ParseOpt) (*Record, error) {
	v, err := DecodeFrom(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	return t.New(v)
}

// DecodeFrom decodes one JSON value from src into map[string]any, []any and
// scalars, without a record type. Anything but whitespace after the value is
// a parse_error.
func DecodeFrom(ctx context.Context, src *Source, opts ...ParseOpt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, singleIssue(CodeParseError, "nil source")
	}
	opt := lastOpt(opts)
	eopt := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	}
	if opt.OnIssue != nil {
		eopt.IssueSink = func(si eng.SimpleIssue) {
			opt.OnIssue(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
		}
	}
	tokens := src.inner
	if !eopt.Disabled() {
		tokens = eng.WrapWithEnforcement(tokens, eopt)
	}
	conv := eng.JSONNumber
	if src.mode == NumberFloat64 {
		conv = eng.Float64
	}
	v, err := eng.DecodeAny(tokens, conv)
	if err != nil {
		return nil, toIssues(err)
	}
	if err := eng.ExpectEOF(tokens); err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// StreamParse reads JSON from r. When MaxBytes is set the input is capped up
// front, otherwise tokens are streamed through the current JSON driver.
func StreamParse(ctx context.Context, t *RecordType, r io.Reader, opts ...ParseOpt) (*Record, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := readCapped(r, opt.MaxBytes)
		if err != nil {
			return nil, err
		}
		return ParseFrom(ctx, t, JSONBytes(data), opts...)
	}
	return ParseFrom(ctx, t, JSONReader(r), opts...)
}

// ParseYAML decodes the first YAML document in data and constructs a record of
// type t from it. Only MaxBytes of opts applies.
func ParseYAML(ctx context.Context, t *RecordType, data []byte, opts ...ParseOpt) (*Record, error) {
	v, err := DecodeYAML(ctx, data, opts...)
	if err != nil {
		return nil, err
	}
	return t.New(v)
}

// DecodeYAML decodes the first YAML document in data into JSON-like values.
func DecodeYAML(ctx context.Context, data []byte, opts ...ParseOpt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit := lastOpt(opts).MaxBytes; limit > 0 && int64(len(data)) > limit {
		return nil, singleIssue(CodeTruncated, "max bytes exceeded")
	}
	var v any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, singleIssue(CodeParseError, err.Error())
	}
	return normalizeYAML(v), nil
}

// normalizeYAML converts map[any]any produced for non-string keys into
// map[string]any, rendering keys that are not strings with fmt.Sprint.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeYAML(vv)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			out[ks] = normalizeYAML(vv)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}

func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, singleIssue(CodeParseError, err.Error())
	}
	if int64(len(data)) > limit {
		return nil, singleIssue(CodeTruncated, "max bytes exceeded")
	}
	return data, nil
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message})
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err})
}

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg})
}
