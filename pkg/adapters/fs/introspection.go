package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	Keys          []string   `json:"keys"`
	ReadOnly      bool       `json:"read_only"`
	WatcherActive bool       `json:"watcher_active"`
	Watchers      int        `json:"watchers"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	keys, _ := s.Keys()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	return StoreState{
		Path:          s.Path,
		SystemDir:     s.config.SystemDir,
		Keys:          keys,
		ReadOnly:      s.config.ReadOnly,
		WatcherActive: s.watchers > 0,
		Watchers:      s.watchers,
		LastEvent:     s.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(delta int) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.watchers += delta
}

func (s *Store) recordEvent() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	now := time.Now()
	s.lastEvent = &now
}
