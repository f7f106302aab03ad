package web

import "github.com/aretw0/sketchnotes/pkg/core"

// LoginDTO is the body of POST /login.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PageDTO is the body of GET /admin and GET /user.
type PageDTO struct {
	Identity     core.Identity `json:"identity"`
	Notes        []core.Note   `json:"notes"`
	EmptyMessage string        `json:"empty_message,omitempty"`
}

// DeleteDTO is the body of DELETE /admin/notes/:id.
type DeleteDTO struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
