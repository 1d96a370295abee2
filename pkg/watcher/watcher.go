// Package watcher turns edits of the scenario and config files into debounced
// change events that trigger a full regeneration.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/neurograph/pkg/logging"
)

// ChangeType represents the kind of file that changed
type ChangeType int

const (
	ChangeTypeScenario ChangeType = iota // The scenario YAML
	ChangeTypeConfig                     // The TOML config file
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeScenario:
		return "scenario"
	case ChangeTypeConfig:
		return "config"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// batchWindow groups the burst of events a single save produces
const batchWindow = 100 * time.Millisecond

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches individual files. It watches their directories, since
// editors often save by writing a new file and renaming it over the old one.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	events  chan ChangeEvent

	mu    sync.Mutex
	files map[string]ChangeType // absolute path -> change type
	dirs  map[string]bool
}

// NewFileWatcher creates a watcher with no files
func NewFileWatcher() (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		events:  make(chan ChangeEvent, 100),
		files:   make(map[string]ChangeType),
		dirs:    make(map[string]bool),
	}, nil
}

// AddFile starts watching path and reports its changes as typ
func (fw *FileWatcher) AddFile(path string, typ ChangeType) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	dir := filepath.Dir(abs)
	if !fw.dirs[dir] {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fw.dirs[dir] = true
	}
	fw.files[abs] = typ

	logging.Info("watching file", "path", abs, "type", typ.String())
	return nil
}

// Start begins processing file system events until ctx is done
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.processEvents(ctx)
}

func (fw *FileWatcher) classify(name string) (ChangeType, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return 0, false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	typ, ok := fw.files[abs]
	return typ, ok
}

// processEvents batches raw events per change type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	pending := make(map[ChangeType]map[string]bool)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		types := make([]ChangeType, 0, len(pending))
		for typ := range pending {
			types = append(types, typ)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		for _, typ := range types {
			paths := make([]string, 0, len(pending[typ]))
			for p := range pending[typ] {
				paths = append(paths, p)
			}
			sort.Strings(paths)

			select {
			case fw.events <- ChangeEvent{Type: typ, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		pending = make(map[ChangeType]map[string]bool)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			// Permission changes do not alter content
			if event.Op == fsnotify.Chmod {
				continue
			}
			typ, watched := fw.classify(event.Name)
			if !watched {
				continue
			}

			logging.Trace("file event", "path", event.Name, "op", event.Op.String())
			if pending[typ] == nil {
				pending[typ] = make(map[string]bool)
			}
			pending[typ][event.Name] = true
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
