// Package memory is an in-process core.Store, used for tests and throwaway sessions.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/sketchnotes/pkg/core"
)

type subscriber struct {
	pattern string
	ch      chan core.Event
}

// Store implements core.Store, core.Mutator and core.Watchable on a map.
type Store struct {
	mu       sync.RWMutex
	data     map[string][]byte
	readOnly bool

	subMu sync.Mutex
	subs  map[*subscriber]struct{}
}

// Option configures a memory Store.
type Option func(*Store)

// WithReadOnly rejects all writes with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(s *Store) { s.readOnly = enabled }
}

// WithSeed preloads raw values.
func WithSeed(values map[string][]byte) Option {
	return func(s *Store) {
		for k, v := range values {
			s.data[k] = bytes.Clone(v)
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		data: make(map[string][]byte),
		subs: make(map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Initialize(ctx context.Context) error { return nil }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return bytes.Clone(v), ok, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	s.mu.Lock()
	_, existed := s.data[key]
	s.data[key] = bytes.Clone(value)
	s.mu.Unlock()

	s.publish(key, existed)
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if existed {
		s.notify(core.Event{Type: core.EventDelete, Key: key, Timestamp: time.Now().Unix()})
	}
	return nil
}

// Mutate runs fn while holding the write lock.
func (s *Store) Mutate(ctx context.Context, key string, fn core.MutateFunc) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	s.mu.Lock()
	current, ok := s.data[key]
	next, err := fn(bytes.Clone(current), ok)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.data[key] = bytes.Clone(next)
	s.mu.Unlock()

	s.publish(key, ok)
	return nil
}

// Watch streams changes to keys matching pattern until ctx is done.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	sub := &subscriber{pattern: pattern, ch: make(chan core.Event, 16)}

	s.subMu.Lock()
	s.subs[sub] = struct{}{}
	s.subMu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, sub)
		close(sub.ch)
		s.subMu.Unlock()
		return nil
	})
	return sub.ch, nil
}

func (s *Store) publish(key string, existed bool) {
	t := core.EventCreate
	if existed {
		t = core.EventModify
	}
	s.notify(core.Event{Type: t, Key: key, Timestamp: time.Now().Unix()})
}

// notify delivers without blocking; a slow subscriber misses events rather than stalling writers.
func (s *Store) notify(e core.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for sub := range s.subs {
		if match, _ := doublestar.Match(sub.pattern, e.Key); !match {
			continue
		}
		select {
		case sub.ch <- e:
		default:
		}
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	keys := len(s.data)
	s.mu.RUnlock()
	s.subMu.Lock()
	watchers := len(s.subs)
	s.subMu.Unlock()
	return map[string]any{
		"keys":      keys,
		"watchers":  watchers,
		"read_only": s.readOnly,
	}
}
