// Package typed converts between raw store values and Go types.
package typed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// Collection is a type-safe view of a whole-collection JSON array stored under one key.
type Collection[T any] struct {
	store    core.Store
	key      string
	validate func([]T) error
}

// NewCollection creates a collection over key. validate, if non-nil, runs on every
// load; a failure is reported as core.ErrCorruptData.
func NewCollection[T any](store core.Store, key string, validate func([]T) error) *Collection[T] {
	return &Collection[T]{store: store, key: key, validate: validate}
}

// Key returns the store key backing the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load reads the whole collection. An absent key is an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	return c.decode(raw)
}

// Save overwrites the whole collection.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	data, err := encode(items)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key, data)
}

// Mutate loads the collection, applies fn and saves the result, under the store's
// lock when it has one. If fn fails nothing is written.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	return core.Mutate(ctx, c.store, c.key, func(current []byte, ok bool) ([]byte, error) {
		items := []T{}
		if ok {
			decoded, err := c.decode(current)
			if err != nil {
				return nil, err
			}
			items = decoded
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		return encode(next)
	})
}

func (c *Collection[T]) decode(raw []byte) ([]T, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: key %q: %v", core.ErrCorruptData, c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	if c.validate != nil {
		if err := c.validate(items); err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", core.ErrCorruptData, c.key, err)
		}
	}
	return items, nil
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection: %w", err)
	}
	return data, nil
}
