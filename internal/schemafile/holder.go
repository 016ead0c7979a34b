package schemafile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// LoadFile reads and loads the schema document at path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Load(data)
}

// Holder provides thread-safe access to a schema Set with hot reload support.
// A failed reload keeps the previous Set.
type Holder struct {
	mu       sync.RWMutex
	set      *Set
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Set)
	onError  []func(error)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads the schema document at path.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	set, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	return &Holder{
		set:    set,
		path:   absPath,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current Set.
func (h *Holder) Get() *Set {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.set
}

// Reload reloads the schema document from disk.
func (h *Holder) Reload() error {
	set, err := LoadFile(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("schema reload failed, keeping old types")
		h.mu.RLock()
		fns := h.onError
		h.mu.RUnlock()
		for _, fn := range fns {
			fn(err)
		}
		return fmt.Errorf("reload schema: %w", err)
	}

	h.mu.Lock()
	h.set = set
	fns := h.onChange
	h.mu.Unlock()

	for _, fn := range fns {
		fn(set)
	}
	h.logger.Info().Str("path", h.path).Strs("types", set.Names()).Msg("schema reloaded")
	return nil
}

// OnChange registers a callback invoked after every successful reload.
func (h *Holder) OnChange(fn func(*Set)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnError registers a callback invoked after every failed reload.
func (h *Holder) OnError(fn func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onError = append(h.onError, fn)
}

// WatchFile reloads the document whenever it is written or recreated.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.mu.Lock()
	select {
	case <-h.stopCh:
		h.mu.Unlock()
		watcher.Close()
		return errors.New("holder stopped")
	default:
	}
	h.watcher = watcher
	h.mu.Unlock()

	// Watch the directory so atomic saves (rename over the file) are seen.
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop(watcher)

	h.logger.Info().Str("path", h.path).Msg("watching schema file for changes")
	return nil
}

// Stop stops watching for file changes.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		close(h.stopCh)
		w := h.watcher
		h.mu.Unlock()
		if w != nil {
			w.Close()
		}
	})
}

func (h *Holder) watchLoop(watcher *fsnotify.Watcher) {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema file changed")
				_ = h.Reload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}
