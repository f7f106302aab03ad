package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/sketchnotes/pkg/core"
)

const debounceDelay = 50 * time.Millisecond

// Watch reports changes to keys matching pattern, whoever made them.
// The returned channel is closed once ctx is done.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	known := make(map[string]bool)
	if keys, err := s.Keys(); err == nil {
		for _, k := range keys {
			known[k] = true
		}
	}

	out := make(chan core.Event)
	w := &watchLoop{
		store:     s,
		pattern:   pattern,
		watcher:   watcher,
		out:       out,
		known:     known,
		debouncer: newDebouncer(debounceDelay),
	}

	s.setWatcherActive(1)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher panic: %w", err))
	}))

	return out, nil
}

type watchLoop struct {
	store     *Store
	pattern   string
	watcher   *fsnotify.Watcher
	out       chan core.Event
	known     map[string]bool
	debouncer *debouncer
}

func (w *watchLoop) run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer close(w.out)
	defer w.store.setWatcherActive(-1)
	defer w.watcher.Close()
	// Pending emits select on ctx, so cancelling first lets them finish before out is closed.
	defer w.debouncer.stopAndWait()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.store.reportError(err)
		}
	}
}

func (w *watchLoop) handle(ctx context.Context, event fsnotify.Event) {
	if logger := w.store.config.Logger; logger != nil {
		logger.Debug("event received", "name", event.Name, "op", event.Op.String())
	}

	if filepath.Dir(event.Name) != filepath.Clean(w.store.Path) {
		return
	}
	key, ok := w.store.keyFor(filepath.Base(event.Name))
	if !ok {
		return
	}
	if match, _ := doublestar.Match(w.pattern, key); !match {
		return
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		// Atomic writes arrive as a Create of the target name.
		t = core.EventCreate
		if w.known[key] {
			t = core.EventModify
		}
		w.known[key] = true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
		delete(w.known, key)
	default:
		return
	}

	w.debouncer.add(core.Event{Type: t, Key: key, Timestamp: time.Now().Unix()}, func(e core.Event) {
		w.store.recordEvent()
		select {
		case w.out <- e:
		case <-ctx.Done():
		}
	})
}

func (s *Store) reportError(err error) {
	if s.config.Logger != nil {
		s.config.Logger.Error("watcher error", "error", err)
	}
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

// debouncer coalesces bursts of events for the same key.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timers  map[string]*time.Timer
	pending map[string]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

func (d *debouncer) add(e core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	// A create followed by writes is still a create.
	if prev, ok := d.pending[e.Key]; ok && prev.Type == core.EventCreate && e.Type == core.EventModify {
		e.Type = core.EventCreate
	}
	d.pending[e.Key] = e

	if t, ok := d.timers[e.Key]; ok {
		t.Reset(d.delay)
		return
	}
	key := e.Key
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		ev, ok := d.pending[key]
		delete(d.pending, key)
		delete(d.timers, key)
		if d.stopped || !ok {
			d.mu.Unlock()
			return
		}
		d.wg.Add(1)
		d.mu.Unlock()

		defer d.wg.Done()
		emit(ev)
	})
}

func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
