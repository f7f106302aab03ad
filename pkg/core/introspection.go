package core

import (
	"github.com/aretw0/introspection"
)

// StoreType reports the component type of a store for observability.
func StoreType(s Store) string {
	if s == nil {
		return "none"
	}
	if comp, ok := s.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return "store"
}

// StoreState returns the introspection state of a store, or nil if it exposes none.
func StoreState(s Store) any {
	if in, ok := s.(introspection.Introspectable); ok {
		return in.State()
	}
	return nil
}
