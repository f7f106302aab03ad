// Package core holds the domain types and the storage port of sketchnotes.
package core

// Storage keys. Together they are the de facto schema of the store.
const (
	KeySession = "loggedInUser"
	KeyNotes   = "notes"
	KeyUsers   = "users"
)

// Routes used as redirect targets by the gate and the flows.
const (
	RouteLanding = "/"
	RouteLogin   = "/login"
	RouteSignup  = "/signup"
	RouteAdmin   = "/admin"
	RouteUser    = "/user"
)

// Note is a single drawing note in the catalog.
type Note struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	Done        bool   `json:"done" yaml:"done"`
}

// NoteInput carries the form fields of a new note.
type NoteInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// NotePatch carries the fields to overwrite on an existing note.
// Nil fields are left unchanged.
type NotePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Done        *bool   `json:"done,omitempty"`
}

// Apply returns a copy of n with the patch fields written over it.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Image != nil {
		n.Image = *p.Image
	}
	if p.Done != nil {
		n.Done = *p.Done
	}
	return n
}

// Role is the privilege level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Home returns the view an identity with this role lands on after login.
func (r Role) Home() string {
	if r == RoleAdmin {
		return RouteAdmin
	}
	return RouteUser
}

// Account is a registered user. Password holds a bcrypt hash.
type Account struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"-"`
	Role     Role   `json:"role" yaml:"role"`
}

// Identity is the session value: who is currently logged in.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to one key of the store.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.Key
}
