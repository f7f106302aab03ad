// Package fs stores each key as a JSON file inside a data directory.
//
// Writes are atomic (temp file + rename) and serialized across processes with an
// advisory lock file kept in the system directory, so several CLI invocations and
// a running server can share one data directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/aretw0/sketchnotes/pkg/core"
)

const (
	// DefaultSystemDir holds the lock file and other bookkeeping.
	DefaultSystemDir = ".sketchnotes"

	fileExt            = ".json"
	lockFileName       = "store.lock"
	defaultLockTimeout = 3 * time.Second
	lockRetryInterval  = 20 * time.Millisecond
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	SystemDir    string // e.g. ".sketchnotes"
	MustExist    bool
	ReadOnly     bool
	LockTimeout  time.Duration
	Logger       *slog.Logger
	ErrorHandler func(error) // Receives runtime watcher failures.
}

// Store implements core.Store, core.Mutator and core.Watchable on the filesystem.
type Store struct {
	Path   string
	config Config
	lock   *flock.Flock

	// mu serializes access within the process; the flock only arbitrates between processes.
	mu sync.Mutex

	stateMu   sync.RWMutex
	watchers  int
	lastEvent *time.Time
}

// NewStore creates a new filesystem-backed store. Call Initialize before use.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = defaultLockTimeout
	}
	return &Store{
		Path:   config.Path,
		config: config,
		lock:   flock.New(filepath.Join(config.Path, config.SystemDir, lockFileName)),
	}
}

// Initialize creates the data and system directories.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
	}
	if s.config.ReadOnly {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(s.Path, s.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	n, err := sweepStaged(s.Path, staleStageAge)
	if err != nil {
		return fmt.Errorf("failed to clean staged writes: %w", err)
	}
	if n > 0 && s.config.Logger != nil {
		s.config.Logger.Warn("removed interrupted writes", "count", n)
	}
	return nil
}

// Get reads the file for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}

	var data []byte
	var found bool
	err = s.withLock(ctx, false, func() error {
		b, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		data, found = b, true
		return nil
	})
	return data, found, err
}

// Set atomically replaces the file for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	return s.withLock(ctx, true, func() error {
		if s.config.Logger != nil {
			s.config.Logger.Debug("writing key", "key", key, "bytes", len(value))
		}
		return replaceFile(path, value, 0644)
	})
}

// Remove deletes the file for key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	return s.withLock(ctx, true, func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
		if s.config.Logger != nil {
			s.config.Logger.Debug("removed key", "key", key)
		}
		return nil
	})
}

// Mutate reads, transforms and writes key while holding the exclusive lock,
// so writers going through any Store on the same directory never lose updates.
func (s *Store) Mutate(ctx context.Context, key string, fn core.MutateFunc) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	return s.withLock(ctx, true, func() error {
		current, err := os.ReadFile(path)
		found := err == nil
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}
		if s.config.Logger != nil {
			s.config.Logger.Debug("mutating key", "key", key, "bytes", len(next))
		}
		return replaceFile(path, next, 0644)
	})
}

// Keys lists the keys currently stored.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if key, ok := s.keyFor(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Read-only stores never create the lock file.
	if s.config.ReadOnly {
		return fn()
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.config.LockTimeout)
	defer cancel()

	var locked bool
	var err error
	if exclusive {
		locked, err = s.lock.TryLockContext(lockCtx, lockRetryInterval)
	} else {
		locked, err = s.lock.TryRLockContext(lockCtx, lockRetryInterval)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire store lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire store lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

func (s *Store) pathFor(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.Path, key+fileExt), nil
}

// keyFor maps a file name inside the data directory back to its key.
func (s *Store) keyFor(name string) (string, bool) {
	if strings.HasPrefix(name, TempFilePrefix) || filepath.Ext(name) != fileExt {
		return "", false
	}
	key := strings.TrimSuffix(name, fileExt)
	if !keyPattern.MatchString(key) {
		return "", false
	}
	return key, true
}
