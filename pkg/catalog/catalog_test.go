package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aretw0/sketchnotes/pkg/adapters/memory"
	"github.com/aretw0/sketchnotes/pkg/core"
)

type fixture struct {
	store    *memory.Store
	notes    *Notes
	accounts *Accounts
	session  *Session
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	accounts := NewAccounts(store, nil)
	accounts.cost = bcrypt.MinCost
	return fixture{
		store:    store,
		notes:    NewNotes(store, nil),
		accounts: accounts,
		session:  NewSession(store, accounts, nil),
	}
}

func seedNotes(t *testing.T, f fixture, titles ...string) []core.Note {
	t.Helper()
	ctx := context.Background()
	for _, title := range titles {
		_, err := f.notes.Create(ctx, core.NoteInput{Title: title, Description: title + " description"})
		require.NoError(t, err)
	}
	notes, err := f.notes.Load(ctx)
	require.NoError(t, err)
	return notes
}

func ptr[T any](v T) *T { return &v }
