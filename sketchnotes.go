package sketchnotes

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sketchnotes/internal/platform"
	"github.com/aretw0/sketchnotes/pkg/catalog"
	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/view"
)

// --- Configuration ---

// Option defines a functional option for configuring sketchnotes.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// WithAdapter selects the storage adapter by name. Defaults to "fs".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStore injects a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithLogger sets the logger for the store and the services.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist fails instead of creating a missing data directory.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSystemDir sets the bookkeeping directory name (e.g. ".sketchnotes").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithDevSafety controls the temp-dir sandbox used by `go run` and `go test` binaries.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithForceTemp forces the use of the sandbox directory.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithLockTimeout bounds the wait for the fs store lock.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// App bundles an opened store with the services built on it.
type App struct {
	Store    core.Store
	Notes    *catalog.Notes
	Accounts *catalog.Accounts
	Session  *catalog.Session
	Logger   *slog.Logger

	runtime *platform.Runtime
}

// New opens the store at uri and wires the catalog services.
func New(uri string, opts ...Option) (*App, error) {
	rt, err := platform.Open(context.Background(), uri, opts...)
	if err != nil {
		return nil, err
	}

	accounts := catalog.NewAccounts(rt.Store, rt.Logger)
	return &App{
		Store:    rt.Store,
		Notes:    catalog.NewNotes(rt.Store, rt.Logger),
		Accounts: accounts,
		Session:  catalog.NewSession(rt.Store, accounts, rt.Logger),
		Logger:   rt.Logger,
		runtime:  rt,
	}, nil
}

// Deps returns the services in the shape the view controllers take.
func (a *App) Deps() view.Deps {
	return view.Deps{
		Store:    a.Store,
		Notes:    a.Notes,
		Accounts: a.Accounts,
		Session:  a.Session,
		Logger:   a.Logger,
	}
}

// Location is where the data lives (a directory, a database file or "memory").
func (a *App) Location() string {
	return a.runtime.Location
}

// State reports the store's introspection state.
func (a *App) State() map[string]any {
	return map[string]any{
		"adapter":  a.runtime.Adapter,
		"location": a.runtime.Location,
		"store":    core.StoreState(a.Store),
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.runtime.Close()
}

// --- Safety & Utils ---

// ResolveDataPath determines the path actually used for the data.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// ErrRootNotFound is returned by FindRoot when no data directory is found.
var ErrRootNotFound = platform.ErrRootNotFound

// FindRoot looks upwards for a data directory, identified by markers or by
// the default ones.
func FindRoot(startDir string, markers ...string) (string, error) {
	return platform.FindRoot(startDir, markers...)
}

// DataDir returns explicit when set, else the data root above cwd, else cwd.
func DataDir(explicit, cwd string) (string, error) {
	return platform.DataDir(explicit, cwd)
}
