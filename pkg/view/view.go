// Package view holds the controllers behind each route: the state a page keeps
// between interactions and the operations its buttons trigger. Controllers read
// the store on Mount and after every mutation; drafts live only in the controller.
package view

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/sketchnotes/pkg/catalog"
	"github.com/aretw0/sketchnotes/pkg/core"
)

// followPattern matches the keys whose changes affect a mounted view.
const followPattern = "{" + core.KeyNotes + "," + core.KeySession + "}"

// Deps are the services shared by all controllers.
type Deps struct {
	Store    core.Store
	Notes    *catalog.Notes
	Accounts *catalog.Accounts
	Session  *catalog.Session
	Logger   *slog.Logger
}

// Landing is the unauthenticated welcome page.
type Landing struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Next     string `json:"next"`
}

// NewLanding returns the landing model.
func NewLanding() Landing {
	return Landing{
		Title:    "Welcome to Our App",
		Subtitle: "Please log in to continue",
		Next:     core.RouteLogin,
	}
}

// follow reloads the view each time the notes or the session change, until ctx
// is done or the gate turns the identity away.
func follow(ctx context.Context, deps Deps, reload func(context.Context) error, fn func(error)) error {
	events, err := core.Watch(ctx, deps.Store, followPattern)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if deps.Logger != nil {
				deps.Logger.Debug("store changed", "event", e.String())
			}
			err := reload(ctx)
			if fn != nil {
				fn(err)
			}
			var redirect *core.RedirectError
			if errors.As(err, &redirect) {
				return err
			}
		}
	}
}
