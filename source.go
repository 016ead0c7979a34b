package nonesafe

import (
	"io"
	"sync"

	eng "github.com/reoring/nonesafe/internal/engine"
	jsonsrc "github.com/reoring/nonesafe/source/json"
)

// Source is a stream of JSON tokens. Obtain one from JSONBytes, JSONReader or
// a JSONDriver.
type Source struct {
	inner eng.TokenSource
	mode  NumberMode
}

// NumberMode reports how numbers from this source are decoded.
func (s *Source) NumberMode() NumberMode { return s.mode }

// Location is the byte offset reached so far, or -1 when unknown.
func (s *Source) Location() int64 { return s.inner.Location() }

// SourceFromEngine wraps an engine.TokenSource. Drivers use it to build
// Sources from their own tokenizers.
func SourceFromEngine(inner eng.TokenSource, mode NumberMode) *Source {
	return &Source{inner: inner, mode: mode}
}

// WithNumberMode returns a copy of s that decodes numbers with m.
func WithNumberMode(s *Source, m NumberMode) *Source { return &Source{inner: s.inner, mode: m} }

// JSONDriver converts JSON input into a Source via a pluggable SPI. The
// built-in implementation is based on encoding/json; importing the source
// package switches to goccy/go-json.
type JSONDriver interface {
	NewReader(r io.Reader) *Source
	NewBytes(b []byte) *Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default encoding/json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the driver used by JSONBytes and JSONReader.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) *Source {
	return SourceFromEngine(jsonsrc.NewReader(r), NumberJSONNumber)
}
func (defaultJSONDriver) NewBytes(b []byte) *Source {
	return SourceFromEngine(jsonsrc.NewBytes(b), NumberJSONNumber)
}
func (defaultJSONDriver) Name() string { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) *Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) *Source { return CurrentJSONDriver().NewBytes(b) }
