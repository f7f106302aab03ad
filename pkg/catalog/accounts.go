package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/typed"
)

// Accounts is the registered-user collection.
type Accounts struct {
	coll   *typed.Collection[core.Account]
	logger *slog.Logger
	cost   int
}

// NewAccounts creates the account collection over store.
func NewAccounts(store core.Store, logger *slog.Logger) *Accounts {
	return &Accounts{
		coll:   typed.NewCollection(store, core.KeyUsers, checkAccounts),
		logger: logger,
		cost:   bcrypt.DefaultCost,
	}
}

// Register adds an account. The email must not already be registered (exact,
// case-sensitive match). An empty role defaults to user.
func (a *Accounts) Register(ctx context.Context, email, password string, role core.Role) (core.Account, error) {
	if role == "" {
		role = core.RoleUser
	}
	if err := validateAccount(email, password, role); err != nil {
		return core.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return core.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	acc := core.Account{Email: email, Password: string(hash), Role: role}

	err = a.coll.Mutate(ctx, func(accounts []core.Account) ([]core.Account, error) {
		if _, ok := find(accounts, email); ok {
			return nil, fmt.Errorf("%s: %w", email, core.ErrDuplicateEmail)
		}
		return append(accounts, acc), nil
	})
	if err != nil {
		return core.Account{}, err
	}
	if a.logger != nil {
		a.logger.Info("account registered", "email", email, "role", role)
	}
	return acc, nil
}

// Authenticate returns the account matching email and password.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (core.Account, error) {
	acc, ok, err := a.Find(ctx, email)
	if err != nil {
		return core.Account{}, err
	}
	if !ok {
		return core.Account{}, core.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return core.Account{}, core.ErrInvalidCredentials
		}
		return core.Account{}, fmt.Errorf("failed to verify password: %w", err)
	}
	return acc, nil
}

// Find looks an account up by exact email.
func (a *Accounts) Find(ctx context.Context, email string) (core.Account, bool, error) {
	accounts, err := a.coll.Load(ctx)
	if err != nil {
		return core.Account{}, false, err
	}
	acc, ok := find(accounts, email)
	return acc, ok, nil
}

// List returns every account in registration order.
func (a *Accounts) List(ctx context.Context) ([]core.Account, error) {
	return a.coll.Load(ctx)
}

func validateAccount(email, password string, role core.Role) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", core.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", core.ErrValidation, email)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", core.ErrValidation)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", core.ErrValidation, role)
	}
	return nil
}

func checkAccounts(accounts []core.Account) error {
	for i, acc := range accounts {
		if acc.Email == "" {
			return fmt.Errorf("account at index %d has no email", i)
		}
		if !acc.Role.Valid() {
			return fmt.Errorf("account %q has unknown role %q", acc.Email, acc.Role)
		}
	}
	return nil
}

func find(accounts []core.Account, email string) (core.Account, bool) {
	for _, acc := range accounts {
		if acc.Email == email {
			return acc, true
		}
	}
	return core.Account{}, false
}
