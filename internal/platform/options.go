package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration for opening a store.
type options struct {
	store        core.Store
	logger       *slog.Logger
	adapter      string
	systemDir    string
	mustExist    bool
	readOnly     bool
	forceTemp    bool
	devSafety    bool
	lockTimeout  time.Duration
	errorHandler func(error)
}

// Option defines a functional option for configuring sketchnotes.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		devSafety: true,
	}
}

// WithStore injects a ready store (e.g. a mock). The adapter options are then ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger for the store and the services.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite" or "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir sets the bookkeeping directory name of the fs adapter.
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly rejects every write with core.ErrReadOnly.
// A read-only store is never moved into the dev sandbox.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithForceTemp always moves the data into the dev sandbox.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) such binaries write under the system temp directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithLockTimeout bounds how long the fs adapter waits for the store lock.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = d
	}
}

// WithWatcherErrorHandler receives runtime failures of the fs watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
