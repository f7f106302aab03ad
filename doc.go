// Package sketchnotes is the composition root of a small drawing-note catalog.
//
// Three collections share one key-value store: the notes (key "notes", newest
// first), the registered accounts (key "users") and the identity of whoever is
// logged in (key "loggedInUser"). The store is the only integration point between
// the pages; each page reads it on mount and after every mutation.
//
// Storage adapters:
//
//   - fs (default): one JSON file per key, atomic writes, a cross-process lock and change events.
//   - sqlite: one table row per key, read-modify-write inside a transaction.
//   - memory: an in-process map, for tests and throwaway sessions.
//
// Usage:
//
//	app, err := sketchnotes.New("./data", sketchnotes.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	note, err := app.Notes.Create(ctx, core.NoteInput{Title: "Sketch A", Description: "first sketch"})
package sketchnotes
