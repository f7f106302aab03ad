package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/typed"
)

// Session holds the identity of whoever is logged in.
type Session struct {
	value    *typed.Value[core.Identity]
	accounts *Accounts
	logger   *slog.Logger
}

// NewSession creates the session over store. accounts resolves the role of
// identities stored as a bare email.
func NewSession(store core.Store, accounts *Accounts, logger *slog.Logger) *Session {
	return &Session{
		value:    typed.NewValue[core.Identity](store, core.KeySession),
		accounts: accounts,
		logger:   logger,
	}
}

// Current returns the stored identity, if any.
func (s *Session) Current(ctx context.Context) (core.Identity, bool, error) {
	raw, ok, err := s.value.Raw(ctx)
	if err != nil || !ok {
		return core.Identity{}, false, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return core.Identity{}, false, nil
	}

	// Older writers stored only the email.
	if raw[0] == '"' {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			return core.Identity{}, false, fmt.Errorf("%w: key %q: %v", core.ErrCorruptData, core.KeySession, err)
		}
		if email == "" {
			return core.Identity{}, false, nil
		}
		id := core.Identity{Email: email, Role: core.RoleUser}
		if s.accounts != nil {
			acc, found, err := s.accounts.Find(ctx, email)
			if err != nil {
				return core.Identity{}, false, err
			}
			if found {
				id.Role = acc.Role
			}
		}
		return id, true, nil
	}

	id, ok, err := s.value.Load(ctx)
	if err != nil || !ok {
		return core.Identity{}, false, err
	}
	if id.Email == "" {
		return core.Identity{}, false, nil
	}
	if !id.Role.Valid() {
		return core.Identity{}, false, fmt.Errorf("%w: key %q: unknown role %q", core.ErrCorruptData, core.KeySession, id.Role)
	}
	return id, true, nil
}

// Login authenticates the account and stores its identity. It returns the
// route the identity lands on.
func (s *Session) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, core.Identity{Email: acc.Email, Role: acc.Role}); err != nil {
		return "", err
	}
	if s.logger != nil {
		s.logger.Info("logged in", "email", acc.Email, "role", acc.Role)
	}
	return acc.Role.Home(), nil
}

// Set stores id as the current identity.
func (s *Session) Set(ctx context.Context, id core.Identity) error {
	return s.value.Save(ctx, id)
}

// Require returns the current identity if it has role, or a *core.RedirectError
// pointing at the login route.
func (s *Session) Require(ctx context.Context, role core.Role) (core.Identity, error) {
	id, err := s.RequireAny(ctx)
	if err != nil {
		return core.Identity{}, err
	}
	if id.Role != role {
		return core.Identity{}, &core.RedirectError{
			To:     core.RouteLogin,
			Reason: fmt.Sprintf("role %q required, have %q", role, id.Role),
		}
	}
	return id, nil
}

// RequireAny returns the current identity whatever its role.
func (s *Session) RequireAny(ctx context.Context) (core.Identity, error) {
	id, ok, err := s.Current(ctx)
	if err != nil {
		return core.Identity{}, err
	}
	if !ok {
		return core.Identity{}, &core.RedirectError{To: core.RouteLogin, Reason: "not logged in"}
	}
	return id, nil
}

// Logout clears the identity and returns the login route.
func (s *Session) Logout(ctx context.Context) (string, error) {
	if err := s.value.Clear(ctx); err != nil {
		return "", err
	}
	if s.logger != nil {
		s.logger.Info("logged out")
	}
	return core.RouteLogin, nil
}
