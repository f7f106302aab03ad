package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/typed"
)

// DeletePrompt is the question put to a Confirmer before a note is removed.
const DeletePrompt = "Are you sure you want to delete this note?"

// Confirmer asks the person at the keyboard to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f(ctx, prompt).
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Always is a Confirmer that approves everything.
var Always Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Notes is the note collection, newest first.
type Notes struct {
	coll   *typed.Collection[core.Note]
	store  core.Store
	logger *slog.Logger
	newID  func() string
}

// NewNotes creates the note collection over store.
func NewNotes(store core.Store, logger *slog.Logger) *Notes {
	return &Notes{
		coll:   typed.NewCollection(store, core.KeyNotes, checkNotes),
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Load returns every note. An absent key is an empty catalog.
func (n *Notes) Load(ctx context.Context) ([]core.Note, error) {
	return n.coll.Load(ctx)
}

// Save overwrites the whole catalog.
func (n *Notes) Save(ctx context.Context, notes []core.Note) error {
	if err := checkNotes(notes); err != nil {
		return fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	return n.coll.Save(ctx, notes)
}

// Get returns the note with id.
func (n *Notes) Get(ctx context.Context, id string) (core.Note, error) {
	notes, err := n.coll.Load(ctx)
	if err != nil {
		return core.Note{}, err
	}
	i := indexOf(notes, id)
	if i < 0 {
		return core.Note{}, fmt.Errorf("note %s: %w", id, core.ErrNotFound)
	}
	return notes[i], nil
}

// Create validates in, assigns a fresh id and puts the note at the head of the catalog.
func (n *Notes) Create(ctx context.Context, in core.NoteInput) (core.Note, error) {
	note := core.Note{
		Title:       in.Title,
		Description: in.Description,
		Image:       strings.TrimSpace(in.Image),
	}
	if err := ValidateNote(note); err != nil {
		return core.Note{}, err
	}

	err := n.coll.Mutate(ctx, func(notes []core.Note) ([]core.Note, error) {
		note.ID = n.newID()
		for indexOf(notes, note.ID) >= 0 {
			note.ID = n.newID()
		}
		return append([]core.Note{note}, notes...), nil
	})
	if err != nil {
		return core.Note{}, err
	}
	n.debug("note created", "id", note.ID)
	return note, nil
}

// Update writes the non-nil fields of patch over the note with id.
func (n *Notes) Update(ctx context.Context, id string, patch core.NotePatch) (core.Note, error) {
	var updated core.Note
	err := n.coll.Mutate(ctx, func(notes []core.Note) ([]core.Note, error) {
		i := indexOf(notes, id)
		if i < 0 {
			return nil, fmt.Errorf("note %s: %w", id, core.ErrNotFound)
		}
		next := patch.Apply(notes[i])
		next.ID = notes[i].ID
		next.Image = strings.TrimSpace(next.Image)
		if err := ValidateNote(next); err != nil {
			return nil, err
		}
		notes[i] = next
		updated = next
		return notes, nil
	})
	if err != nil {
		return core.Note{}, err
	}
	n.debug("note updated", "id", id)
	return updated, nil
}

// ToggleDone flips the done flag of the note with id.
func (n *Notes) ToggleDone(ctx context.Context, id string) (core.Note, error) {
	var toggled core.Note
	err := n.coll.Mutate(ctx, func(notes []core.Note) ([]core.Note, error) {
		i := indexOf(notes, id)
		if i < 0 {
			return nil, fmt.Errorf("note %s: %w", id, core.ErrNotFound)
		}
		notes[i].Done = !notes[i].Done
		toggled = notes[i]
		return notes, nil
	})
	if err != nil {
		return core.Note{}, err
	}
	n.debug("note toggled", "id", id, "done", toggled.Done)
	return toggled, nil
}

// Remove deletes the note with id once confirm approves it. A declined or missing
// confirmation returns core.ErrDeletionNotConfirmed and leaves the catalog untouched.
func (n *Notes) Remove(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		return core.ErrDeletionNotConfirmed
	}
	err := n.coll.Mutate(ctx, func(notes []core.Note) ([]core.Note, error) {
		i := indexOf(notes, id)
		if i < 0 {
			return nil, fmt.Errorf("note %s: %w", id, core.ErrNotFound)
		}
		return append(notes[:i], notes[i+1:]...), nil
	})
	if err != nil {
		return err
	}
	n.debug("note removed", "id", id)
	return nil
}

// Watch reports changes to the catalog made through any writer of the store.
func (n *Notes) Watch(ctx context.Context) (<-chan core.Event, error) {
	return core.Watch(ctx, n.store, core.KeyNotes)
}

func (n *Notes) debug(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}

// ValidateNote checks the fields a note must carry to be stored.
func ValidateNote(note core.Note) error {
	if strings.TrimSpace(note.Title) == "" || strings.TrimSpace(note.Description) == "" {
		return fmt.Errorf("%w: title and description are required", core.ErrValidation)
	}
	if note.Image != "" {
		u, err := url.Parse(note.Image)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: image must be an http(s) URL", core.ErrValidation)
		}
	}
	return nil
}

func checkNotes(notes []core.Note) error {
	seen := make(map[string]bool, len(notes))
	for i, note := range notes {
		if note.ID == "" {
			return fmt.Errorf("note at index %d has no id", i)
		}
		if seen[note.ID] {
			return fmt.Errorf("duplicate note id %s", note.ID)
		}
		seen[note.ID] = true
	}
	return nil
}

func indexOf(notes []core.Note, id string) int {
	for i, note := range notes {
		if note.ID == id {
			return i
		}
	}
	return -1
}
