// Package lifecycle exposes store change events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// ErrStarted is returned by Start on a source that is already running.
var ErrStarted = errors.New("source already started")

// KeySource relays changes of selected store keys. core.Event satisfies
// lifecycle.Event through its String method.
type KeySource struct {
	events  <-chan core.Event
	keys    []string
	out     chan lifecycle.Event
	started atomic.Bool
}

var _ lifecycle.Source = (*KeySource)(nil)

// NewSource relays events for keys. With no keys every event passes.
func NewSource(events <-chan core.Event, keys ...string) *KeySource {
	return &KeySource{
		events: events,
		keys:   keys,
		out:    make(chan lifecycle.Event),
	}
}

// Events is closed once the source stops.
func (s *KeySource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start relays until ctx is done or the store closes its channel.
func (s *KeySource) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	lifecycle.Go(ctx, s.relay)
	return nil
}

func (s *KeySource) relay(ctx context.Context) error {
	defer close(s.out)
	for {
		var e core.Event
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.events:
			if !ok {
				return nil
			}
			e = ev
		}
		if !s.wants(e.Key) {
			continue
		}
		select {
		case s.out <- e:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *KeySource) wants(key string) bool {
	return len(s.keys) == 0 || slices.Contains(s.keys, key)
}
