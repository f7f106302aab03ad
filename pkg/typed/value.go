package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// Value is a type-safe view of a single JSON value stored under one key.
type Value[T any] struct {
	store core.Store
	key   string
}

// NewValue creates a typed value over key.
func NewValue[T any](store core.Store, key string) *Value[T] {
	return &Value[T]{store: store, key: key}
}

// Load returns the value and whether it was present.
func (v *Value[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T
	raw, ok, err := v.store.Get(ctx, v.key)
	if err != nil || !ok {
		return zero, false, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false, fmt.Errorf("%w: key %q: %v", core.ErrCorruptData, v.key, err)
	}
	return out, true, nil
}

// Raw returns the undecoded value, for callers that accept more than one shape.
func (v *Value[T]) Raw(ctx context.Context) ([]byte, bool, error) {
	return v.store.Get(ctx, v.key)
}

// Save overwrites the value.
func (v *Value[T]) Save(ctx context.Context, val T) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return v.store.Set(ctx, v.key, data)
}

// Clear removes the value.
func (v *Value[T]) Clear(ctx context.Context) error {
	return v.store.Remove(ctx, v.key)
}
