package main

import (
	"bytes"
	encjson "encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// openInput returns the named file, or stdin for "" and "-".
func (a *app) openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(a.stdin), "-", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, args[0], nil
}

// inputFormat resolves "auto" from the file extension; stdin defaults to JSON.
func inputFormat(flag, name string) (string, error) {
	switch flag {
	case "json", "yaml":
		return flag, nil
	case "", "auto":
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			return "yaml", nil
		}
		return "json", nil
	}
	return "", fmt.Errorf("input format %q: want auto, json or yaml", flag)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json", "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return err
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(plainNumbers(v)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return fmt.Errorf("output format %q: want json or yaml", format)
}

// plainNumbers converts json.Number values into int64 or float64 so YAML
// emits them as numbers rather than strings.
func plainNumbers(v any) any {
	switch t := v.(type) {
	case encjson.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = plainNumbers(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plainNumbers(t[i])
		}
		return out
	default:
		return v
	}
}
