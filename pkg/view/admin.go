package view

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/sketchnotes/pkg/catalog"
	"github.com/aretw0/sketchnotes/pkg/core"
)

// Field names a note form field.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldImage       Field = "image"
)

// Admin is the CRUD page, open to the admin role only.
type Admin struct {
	deps Deps

	mu        sync.Mutex
	identity  core.Identity
	notes     []core.Note
	formOpen  bool
	editingID string
	draft     core.NoteInput
}

// NewAdmin creates an unmounted admin page.
func NewAdmin(deps Deps) *Admin {
	return &Admin{deps: deps}
}

// Mount checks the gate and loads the notes. A non-admin identity gets a
// *core.RedirectError and no notes.
func (a *Admin) Mount(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reload(ctx)
}

func (a *Admin) reload(ctx context.Context) error {
	id, err := a.deps.Session.Require(ctx, core.RoleAdmin)
	if err != nil {
		a.identity, a.notes = core.Identity{}, nil
		return err
	}
	notes, err := a.deps.Notes.Load(ctx)
	if err != nil {
		return err
	}
	a.identity, a.notes = id, notes
	return nil
}

// Identity returns the admin the page was mounted for.
func (a *Admin) Identity() core.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// Notes returns the notes as last loaded.
func (a *Admin) Notes() []core.Note {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.notes)
}

// FormOpen reports whether the create/edit form is shown.
func (a *Admin) FormOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.formOpen
}

// EditingID is the note being edited, or "" when the form creates a new note.
func (a *Admin) EditingID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editingID
}

// Draft returns the form fields.
func (a *Admin) Draft() core.NoteInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft
}

// EmptyMessage is shown instead of the list when there are no notes.
func (a *Admin) EmptyMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.notes) > 0 {
		return ""
	}
	return "No notes available"
}

// ToggleForm opens or closes the form, always with a blank create draft.
func (a *Admin) ToggleForm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.formOpen = !a.formOpen
	a.resetForm()
}

// Edit opens the form pre-filled with the note with id.
func (a *Admin) Edit(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := slices.IndexFunc(a.notes, func(n core.Note) bool { return n.ID == id })
	if i < 0 {
		return fmt.Errorf("note %s: %w", id, core.ErrNotFound)
	}
	n := a.notes[i]
	a.draft = core.NoteInput{Title: n.Title, Description: n.Description, Image: n.Image}
	a.editingID = id
	a.formOpen = true
	return nil
}

// SetField changes one draft field.
func (a *Admin) SetField(field Field, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch field {
	case FieldTitle:
		a.draft.Title = value
	case FieldDescription:
		a.draft.Description = value
	case FieldImage:
		a.draft.Image = value
	default:
		return fmt.Errorf("%w: unknown field %q", core.ErrValidation, field)
	}
	return nil
}

// Submit creates a note from the draft, or overwrites the note being edited.
// On a validation error the draft and the form stay as they are.
func (a *Admin) Submit(ctx context.Context) (core.Note, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.authorize(ctx); err != nil {
		return core.Note{}, err
	}

	var (
		note core.Note
		err  error
	)
	if a.editingID != "" {
		d := a.draft
		note, err = a.deps.Notes.Update(ctx, a.editingID, core.NotePatch{
			Title:       &d.Title,
			Description: &d.Description,
			Image:       &d.Image,
		})
	} else {
		note, err = a.deps.Notes.Create(ctx, a.draft)
	}
	if err != nil {
		return core.Note{}, err
	}

	a.formOpen = false
	a.resetForm()
	return note, a.reload(ctx)
}

// ToggleDone flips the done flag of a note.
func (a *Admin) ToggleDone(ctx context.Context, id string) (core.Note, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.authorize(ctx); err != nil {
		return core.Note{}, err
	}
	note, err := a.deps.Notes.ToggleDone(ctx, id)
	if err != nil {
		return core.Note{}, err
	}
	return note, a.reload(ctx)
}

// Delete removes a note once confirm approves it.
func (a *Admin) Delete(ctx context.Context, id string, confirm catalog.Confirmer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.authorize(ctx); err != nil {
		return err
	}
	if err := a.deps.Notes.Remove(ctx, id, confirm); err != nil {
		return err
	}
	if a.editingID == id {
		a.formOpen = false
		a.resetForm()
	}
	return a.reload(ctx)
}

// Logout clears the session and returns the login route.
func (a *Admin) Logout(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity, a.notes = core.Identity{}, nil
	a.formOpen = false
	a.resetForm()
	return a.deps.Session.Logout(ctx)
}

// Follow reloads the page whenever the notes or the session change and passes
// the outcome to fn. It blocks until ctx is done, and returns the
// *core.RedirectError if the identity loses access.
func (a *Admin) Follow(ctx context.Context, fn func(error)) error {
	return follow(ctx, a.deps, a.Mount, fn)
}

// authorize re-runs the admin gate. Mutators call it before any write.
func (a *Admin) authorize(ctx context.Context) error {
	id, err := a.deps.Session.Require(ctx, core.RoleAdmin)
	if err != nil {
		a.identity, a.notes = core.Identity{}, nil
		return err
	}
	a.identity = id
	return nil
}

func (a *Admin) resetForm() {
	a.draft = core.NoteInput{}
	a.editingID = ""
}
