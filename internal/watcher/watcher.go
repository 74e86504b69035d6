// Package watcher monitors a directory-mode workspace for out-of-band
// changes — the user editing SVGs in a design tool, syncing files in, or
// deleting them by hand — and emits debounced events so collections can be
// reloaded. Only the directory backend has a filesystem to watch; key-value
// mode does not support watching.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/storage"
)

// DefaultDebounce is how long a file must stay quiet before an event is
// emitted. Editors often write a file several times in quick succession.
const DefaultDebounce = 500 * time.Millisecond

// EventType classifies a workspace change.
type EventType int

const (
	EventAdded EventType = iota
	EventModified
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one debounced workspace change.
type Event struct {
	Type EventType
	Area storage.Area
	Name string
	Path string
}

// Watcher watches both area directories of a workspace.
type Watcher struct {
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	debounce time.Duration
	areas    map[string]storage.Area // area directory path -> area

	mu      sync.Mutex
	pending map[string]*pending

	events    chan Event
	errorsCh  chan error
	closeOnce sync.Once
	done      chan struct{}
}

type pending struct {
	event Event
	timer *time.Timer
}

// New creates a watcher over the workspace's area directories. Pass 0 for
// debounce to use DefaultDebounce.
func New(dir *storage.Directory, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if dir == nil {
		return nil, errors.Unsupported("watching requires the directory storage backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Internal("create filesystem watcher").WithCause(err)
	}

	w := &Watcher{
		logger:   logger,
		fsw:      fsw,
		debounce: debounce,
		areas:    make(map[string]storage.Area, 2),
		pending:  make(map[string]*pending),
		events:   make(chan Event, 64),
		errorsCh: make(chan error, 8),
		done:     make(chan struct{}),
	}
	for _, area := range storage.Areas() {
		path := dir.AreaPath(area)
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return nil, errors.Storagef("watch %s directory", area).WithCause(err)
		}
		w.areas[path] = area
	}

	logger.Info("workspace watcher started", "root", dir.Root(), "debounce", debounce)
	return w, nil
}

// Events returns the debounced event channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the watcher error channel.
func (w *Watcher) Errors() <-chan error {
	return w.errorsCh
}

// Start processes filesystem notifications until the context is cancelled or
// the watcher is closed. It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errorsCh <- err:
			default:
				w.logger.Warn("watcher error dropped", "error", err)
			}
		}
	}
}

// Close stops the watcher. Pending debounce timers are cancelled; their
// events are not emitted.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()

		w.mu.Lock()
		for _, p := range w.pending {
			p.timer.Stop()
		}
		w.pending = map[string]*pending{}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) handle(ev fsnotify.Event) {
	area, ok := w.areas[filepath.Dir(ev.Name)]
	if !ok {
		return
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return // probe files and editor droppings
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		w.schedule(Event{Type: EventAdded, Area: area, Name: name, Path: ev.Name})
	case ev.Op.Has(fsnotify.Write):
		w.schedule(Event{Type: EventModified, Area: area, Name: name, Path: ev.Name})
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		// Deletes are emitted immediately; there is nothing to settle.
		w.cancel(ev.Name)
		w.emit(Event{Type: EventRemoved, Area: area, Name: name, Path: ev.Name})
	}
}

// schedule arms (or re-arms) the debounce timer for a path. A Create
// followed by Writes within the window collapses to a single Added event.
func (w *Watcher) schedule(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[ev.Path]; ok {
		p.timer.Reset(w.debounce)
		return
	}

	p := &pending{event: ev}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, ev.Path)
		w.mu.Unlock()

		select {
		case <-w.done:
		default:
			w.emit(p.event)
		}
	})
	w.pending[ev.Path] = p
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
		w.logger.Debug("workspace change", "type", ev.Type, "area", ev.Area, "name", ev.Name)
	default:
		w.logger.Warn("event dropped, consumer too slow", "type", ev.Type, "name", ev.Name)
	}
}
