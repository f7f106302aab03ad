package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/sketchnotes/pkg/adapters/fs"
	"github.com/aretw0/sketchnotes/pkg/core"
)

type runner struct {
	t    *testing.T
	data string
}

func (r runner) run(stdin string, args ...string) (string, error) {
	r.t.Helper()
	c := newCLI(strings.NewReader(stdin))
	var out, errOut bytes.Buffer
	c.root.SetOut(&out)
	c.root.SetErr(&errOut)
	if r.data != "" {
		args = append([]string{"--data", r.data}, args...)
	}
	c.root.SetArgs(args)
	err := c.root.Execute()
	return out.String(), err
}

func (r runner) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.run("", args...)
	require.NoError(r.t, err, out)
	return out
}

func TestCLI_AdminFlow(t *testing.T) {
	r := runner{t: t, data: t.TempDir()}

	out := r.mustRun("signup", "admin@example.com", "pw", "--role", "admin")
	assert.Contains(t, out, "Registered successfully as ADMIN")

	_, err := r.run("", "signup", "admin@example.com", "pw")
	assert.ErrorContains(t, err, "User already registered!")

	_, err = r.run("", "notes", "add", "Sketch A", "--description", "first sketch")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	out = r.mustRun("login", "admin@example.com", "pw")
	assert.Contains(t, out, "/admin")

	out = r.mustRun("notes", "list")
	assert.Contains(t, out, "No drawing notes uploaded")

	_, err = r.run("", "notes", "add", "Sketch A")
	assert.ErrorIs(t, err, core.ErrValidation)

	r.mustRun("notes", "add", "Sketch A", "--description", "first sketch")

	var notes []core.Note
	require.NoError(t, json.Unmarshal([]byte(r.mustRun("notes", "list", "--format", "json")), &notes))
	require.Len(t, notes, 1)
	id := notes[0].ID

	assert.Contains(t, r.mustRun("notes", "toggle", id), "done=true")
	r.mustRun("notes", "edit", id, "--title", "Sketch A2")

	require.NoError(t, yaml.Unmarshal([]byte(r.mustRun("notes", "list", "--format", "yaml")), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Sketch A2", notes[0].Title)
	assert.Equal(t, "first sketch", notes[0].Description)
	assert.True(t, notes[0].Done)

	out, err = r.run("n\n", "notes", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete this note? [y/N]")
	assert.Contains(t, out, "Aborted")

	out, err = r.run("y\n", "notes", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Note deleted")
	assert.Contains(t, r.mustRun("notes", "list"), "No drawing notes uploaded")

	out = r.mustRun("users", "list")
	assert.Contains(t, out, "admin@example.com")
	assert.NotContains(t, out, "$2a$")

	assert.Contains(t, r.mustRun("logout"), "Logged out")
	assert.Contains(t, r.mustRun("whoami"), "Not logged in")
}

func TestCLI_UserCannotManage(t *testing.T) {
	r := runner{t: t, data: t.TempDir()}
	r.mustRun("signup", "user@example.com", "pw")
	r.mustRun("login", "user@example.com", "pw")

	out := r.mustRun("whoami", "--format", "json")
	var id core.Identity
	require.NoError(t, json.Unmarshal([]byte(out), &id))
	assert.Equal(t, core.RoleUser, id.Role)

	_, err := r.run("", "notes", "add", "x", "--description", "y")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = r.run("", "users", "list")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestCLI_InfoAndVersion(t *testing.T) {
	r := runner{t: t, data: t.TempDir()}
	assert.Contains(t, r.mustRun("version"), "sketchnotes version")

	out := r.mustRun("info")
	assert.Contains(t, out, "fs")
	assert.Contains(t, out, r.data)

	_, err := r.run("", "info", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = r.run("", "info", "--adapter", "s3")
	assert.ErrorContains(t, err, "unknown adapter")
}

func TestCLI_FindsDataRootFromSubdirectory(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, fs.DefaultSystemDir), 0755))
	nested := filepath.Join(base, "sketches", "2024")
	require.NoError(t, os.MkdirAll(nested, 0755))

	explicit := runner{t: t, data: base}
	explicit.mustRun("signup", "ana@example.com", "pw")
	explicit.mustRun("login", "ana@example.com", "pw")

	t.Chdir(nested)
	implicit := runner{t: t}
	out := implicit.mustRun("whoami")
	assert.Contains(t, out, "ana@example.com")
}
