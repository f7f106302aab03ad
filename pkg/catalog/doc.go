// Package catalog implements the typed stores of sketchnotes: the note collection,
// the account collection and the session identity, all kept in one core.Store.
package catalog
