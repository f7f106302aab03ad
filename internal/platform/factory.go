// Package platform wires adapters from configuration.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/sketchnotes/pkg/adapters/fs"
	"github.com/aretw0/sketchnotes/pkg/adapters/memory"
	"github.com/aretw0/sketchnotes/pkg/adapters/sqlite"
	"github.com/aretw0/sketchnotes/pkg/core"
)

// DatabaseFileName is the sqlite file created inside a directory URI.
const DatabaseFileName = "sketchnotes.db"

// Runtime is an initialized store plus the settings it was opened with.
type Runtime struct {
	Store    core.Store
	Logger   *slog.Logger
	Adapter  string
	Location string
}

// Open resolves the options, builds the selected adapter and initializes it.
// The uri is adapter-specific: a data directory for "fs", a directory or a
// database file for "sqlite", and ignored by "memory".
func Open(ctx context.Context, uri string, opts ...Option) (*Runtime, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.store != nil {
		if err := o.store.Initialize(ctx); err != nil {
			return nil, err
		}
		return &Runtime{Store: o.store, Logger: o.logger, Adapter: core.StoreType(o.store)}, nil
	}

	var (
		store    core.Store
		location string
		err      error
	)
	switch o.adapter {
	case AdapterFS, "":
		location = resolve(uri, o)
		store = fs.NewStore(fs.Config{
			Path:         location,
			SystemDir:    o.systemDir,
			MustExist:    o.mustExist,
			ReadOnly:     o.readOnly,
			LockTimeout:  o.lockTimeout,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		})
	case AdapterSQLite:
		location = sqlitePath(resolve(uri, o))
		if !o.readOnly && !o.mustExist {
			if err := os.MkdirAll(filepath.Dir(location), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		store, err = sqlite.Open(sqlite.Config{DSN: location, ReadOnly: o.readOnly, Logger: o.logger})
	case AdapterMemory:
		location = "memory"
		store = memory.New(memory.WithReadOnly(o.readOnly))
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(ctx); err != nil {
		if c, ok := store.(core.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	if o.logger != nil {
		o.logger.Debug("store opened", "adapter", core.StoreType(store), "location", location)
	}
	return &Runtime{Store: store, Logger: o.logger, Adapter: core.StoreType(store), Location: location}, nil
}

// Close releases the store's resources, if it holds any.
func (r *Runtime) Close() error {
	if c, ok := r.Store.(core.Closer); ok {
		return c.Close()
	}
	return nil
}

func resolve(uri string, o *options) string {
	// A read-only store cannot damage anything, so it skips the sandbox.
	bypass := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(uri, useTemp)

	if o.logger != nil && IsDevRun() {
		switch {
		case useTemp:
			o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", uri, "resolved_path", resolved)
		case o.readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		}
	}
	return resolved
}

func sqlitePath(location string) string {
	ext := strings.ToLower(filepath.Ext(location))
	if ext == ".db" || ext == ".sqlite" || ext == ".sqlite3" {
		return location
	}
	return filepath.Join(location, DatabaseFileName)
}
