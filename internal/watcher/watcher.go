package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rjeczalik/notify"
)

const (
	eventBufferSize        = 64
	defaultDebounceTimeout = 200 * time.Millisecond
)

// defaultIgnores are glob patterns, relative to the watch root, for
// paths that never count as user edits.
var defaultIgnores = []string{
	".git/**",
	"**/.empty",
	"**/*.swp",
	"**/.DS_Store",
}

// ChangeFunc is invoked once per debounced local modification.
type ChangeFunc func(relPath string)

// Watcher observes a working copy for local modifications so the
// unsynced-changes sentinel can be raised as soon as the user edits
// files.
type Watcher struct {
	root     string
	ignores  []string
	onChange ChangeFunc

	rawEvents chan notify.EventInfo
	debounce  time.Duration
	timers    map[string]*time.Timer
	timersMu  sync.Mutex
	wg        sync.WaitGroup
}

func New(root string, onChange ChangeFunc) *Watcher {
	return &Watcher{
		root:     root,
		ignores:  defaultIgnores,
		onChange: onChange,
		debounce: defaultDebounceTimeout,
		timers:   make(map[string]*time.Timer),
	}
}

// AddIgnores appends extra glob patterns to the ignore set.
func (w *Watcher) AddIgnores(patterns ...string) {
	w.ignores = append(w.ignores, patterns...)
}

// SetDebounce overrides the event debounce window.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins recursive watching. It returns once the watch is
// registered; events are handled until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("watcher start", "dir", w.root)

	w.rawEvents = make(chan notify.EventInfo, eventBufferSize)
	if err := notify.Watch(filepath.Join(w.root, "..."), w.rawEvents,
		notify.Create, notify.Write, notify.Remove, notify.Rename); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Wait blocks until the event loop has drained after ctx cancellation.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	defer notify.Stop(w.rawEvents)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.rawEvents:
			if !ok {
				return
			}
			rel, err := filepath.Rel(w.root, event.Path())
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if w.ignored(rel) {
				continue
			}
			w.debounceEvent(rel)
		}
	}
}

func (w *Watcher) ignored(rel string) bool {
	if rel == "." || strings.HasPrefix(rel, "../") {
		return true
	}
	for _, pattern := range w.ignores {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// debounceEvent coalesces the event burst a single save produces into
// one callback per path.
func (w *Watcher) debounceEvent(rel string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, ok := w.timers[rel]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.wg.Add(1)
	w.timers[rel] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.timersMu.Lock()
		delete(w.timers, rel)
		w.timersMu.Unlock()

		slog.Debug("local change", "path", rel)
		if w.onChange != nil {
			w.onChange(rel)
		}
	})
}

// stopTimers cancels pending debounce timers so Wait returns with no
// callback still scheduled. A timer already firing keeps its own wg
// slot and Wait blocks until it finishes.
func (w *Watcher) stopTimers() {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	for rel, timer := range w.timers {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.timers, rel)
	}
}
