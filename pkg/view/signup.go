package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/sketchnotes/pkg/core"
)

// SignupDraft holds the registration form fields.
type SignupDraft struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     core.Role `json:"role"`
}

// Result is what a flow tells the person after an action.
type Result struct {
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Signup is the registration flow.
type Signup struct {
	deps  Deps
	Draft SignupDraft
}

// NewSignup creates the registration flow with the default role selected.
func NewSignup(deps Deps) *Signup {
	return &Signup{deps: deps, Draft: SignupDraft{Role: core.RoleUser}}
}

// Submit registers the draft. On success it points to the login route.
// A duplicate email keeps the person on the form with a message.
func (s *Signup) Submit(ctx context.Context) (Result, error) {
	acc, err := s.deps.Accounts.Register(ctx, s.Draft.Email, s.Draft.Password, s.Draft.Role)
	if errors.Is(err, core.ErrDuplicateEmail) {
		return Result{Message: "User already registered!"}, err
	}
	if err != nil {
		return Result{Message: err.Error()}, err
	}
	s.Draft = SignupDraft{Role: core.RoleUser}
	return Result{
		Redirect: core.RouteLogin,
		Message:  fmt.Sprintf("Registered successfully as %s", strings.ToUpper(string(acc.Role))),
	}, nil
}
