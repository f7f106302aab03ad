package view

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// User is the read-only catalog, open to any logged-in identity.
type User struct {
	deps Deps

	mu       sync.Mutex
	identity core.Identity
	notes    []core.Note
}

// NewUser creates an unmounted catalog page.
func NewUser(deps Deps) *User {
	return &User{deps: deps}
}

// Mount checks that someone is logged in and loads the notes.
func (u *User) Mount(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	id, err := u.deps.Session.RequireAny(ctx)
	if err != nil {
		u.identity, u.notes = core.Identity{}, nil
		return err
	}
	notes, err := u.deps.Notes.Load(ctx)
	if err != nil {
		return err
	}
	u.identity, u.notes = id, notes
	return nil
}

// Identity is the mounted identity.
func (u *User) Identity() core.Identity {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.identity
}

// Notes returns the loaded notes, newest first.
func (u *User) Notes() []core.Note {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.notes)
}

// EmptyMessage is shown when the catalog has no notes.
func (u *User) EmptyMessage() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.notes) > 0 {
		return ""
	}
	return "No drawing notes uploaded"
}

// Logout clears the session and returns the login route.
func (u *User) Logout(ctx context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.identity, u.notes = core.Identity{}, nil
	return u.deps.Session.Logout(ctx)
}

// Follow is Admin.Follow for the catalog page.
func (u *User) Follow(ctx context.Context, fn func(error)) error {
	return follow(ctx, u.deps, u.Mount, fn)
}
