package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aretw0/sketchnotes/pkg/catalog"
	"github.com/aretw0/sketchnotes/pkg/core"
	"github.com/aretw0/sketchnotes/pkg/view"
)

func (s *Server) landing(c echo.Context) error {
	return c.JSON(http.StatusOK, view.NewLanding())
}

func (s *Server) signup(c echo.Context) error {
	flow := view.NewSignup(s.deps)
	if err := c.Bind(&flow.Draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := flow.Submit(c.Request().Context())
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"error": res.Message})
	}
	return c.JSON(http.StatusCreated, res)
}

func (s *Server) login(c echo.Context) error {
	var creds LoginDTO
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	to, err := s.deps.Session.Login(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Result{Redirect: to})
}

func (s *Server) logout(c echo.Context) error {
	to, err := s.deps.Session.Logout(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, to)
}

func (s *Server) userPage(c echo.Context) error {
	page := view.NewUser(s.deps)
	if err := page.Mount(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageDTO{
		Identity:     page.Identity(),
		Notes:        page.Notes(),
		EmptyMessage: page.EmptyMessage(),
	})
}

func (s *Server) adminPage(c echo.Context) error {
	page, err := s.mountAdmin(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PageDTO{
		Identity:     page.Identity(),
		Notes:        page.Notes(),
		EmptyMessage: page.EmptyMessage(),
	})
}

func (s *Server) createNote(c echo.Context) error {
	ctx := c.Request().Context()
	var in core.NoteInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	page, err := s.mountAdmin(ctx)
	if err != nil {
		return err
	}

	page.ToggleForm()
	for field, value := range map[view.Field]string{
		view.FieldTitle:       in.Title,
		view.FieldDescription: in.Description,
		view.FieldImage:       in.Image,
	} {
		if err := page.SetField(field, value); err != nil {
			return err
		}
	}
	note, err := page.Submit(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (s *Server) updateNote(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	var patch core.NotePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	page, err := s.mountAdmin(ctx)
	if err != nil {
		return err
	}
	if err := page.Edit(id); err != nil {
		return err
	}

	fields := map[view.Field]*string{
		view.FieldTitle:       patch.Title,
		view.FieldDescription: patch.Description,
		view.FieldImage:       patch.Image,
	}
	for field, value := range fields {
		if value == nil {
			continue
		}
		if err := page.SetField(field, *value); err != nil {
			return err
		}
	}
	note, err := page.Submit(ctx)
	if err != nil {
		return err
	}
	if patch.Done != nil && *patch.Done != note.Done {
		if note, err = page.ToggleDone(ctx, id); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) toggleNote(c echo.Context) error {
	ctx := c.Request().Context()
	page, err := s.mountAdmin(ctx)
	if err != nil {
		return err
	}
	note, err := page.ToggleDone(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// deleteNote only removes the note when the request carries confirm=true.
func (s *Server) deleteNote(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	page, err := s.mountAdmin(ctx)
	if err != nil {
		return err
	}

	confirmed := c.QueryParam("confirm") == "true"
	err = page.Delete(ctx, id, catalog.ConfirmFunc(func(context.Context, string) bool { return confirmed }))
	if errors.Is(err, core.ErrDeletionNotConfirmed) {
		return c.JSON(http.StatusOK, DeleteDTO{ID: id, Deleted: false})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeleteDTO{ID: id, Deleted: true})
}

func (s *Server) mountAdmin(ctx context.Context) (*view.Admin, error) {
	page := view.NewAdmin(s.deps)
	if err := page.Mount(ctx); err != nil {
		return nil, err
	}
	return page, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusSeeOther
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrReadOnly):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var redirect *core.RedirectError
		if errors.As(err, &redirect) {
			c.Response().Header().Set(echo.HeaderLocation, redirect.To)
			_ = c.JSON(http.StatusSeeOther, echo.Map{"error": redirect.Reason, "redirect": redirect.To})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, echo.Map{"error": msg})
			return
		}

		code := statusFor(err)
		if code == http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		}
		_ = c.JSON(code, echo.Map{"error": err.Error()})
	}
}
