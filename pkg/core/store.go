package core

import "context"

// Store is the key-value port. Values are whole serialized collections;
// there are no partial writes.
type Store interface {
	// Get returns the raw value at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set overwrites the value at key.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Initialize ensures the underlying storage is ready (directories, schema).
	Initialize(ctx context.Context) error
}

// MutateFunc receives the current value of a key and returns the value to store.
type MutateFunc func(current []byte, ok bool) ([]byte, error)

// Mutator is implemented by stores that can run a read-modify-write of one key
// while holding their write lock.
type Mutator interface {
	Mutate(ctx context.Context, key string, fn MutateFunc) error
}

// Watchable is implemented by stores that can report changes made by other writers.
// The pattern is a doublestar glob matched against keys ("*" for all).
// The channel is closed when ctx is done.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Closer is implemented by stores holding resources (connections, locks).
type Closer interface {
	Close() error
}

// Mutate runs fn against key, using the store's lock when it has one.
// Without a Mutator the read and write are separate and the last writer wins.
func Mutate(ctx context.Context, s Store, key string, fn MutateFunc) error {
	if m, ok := s.(Mutator); ok {
		return m.Mutate(ctx, key, fn)
	}
	current, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current, ok)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, next)
}

// Watch observes changes to keys matching pattern if the store supports it.
func Watch(ctx context.Context, s Store, pattern string) (<-chan Event, error) {
	w, ok := s.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx, pattern)
}
