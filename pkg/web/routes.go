package web

import "github.com/aretw0/sketchnotes/pkg/core"

func (s *Server) routes() {
	// Public routes
	s.echo.GET(core.RouteLanding, s.landing)
	s.echo.POST(core.RouteSignup, s.signup)
	s.echo.POST(core.RouteLogin, s.login)
	s.echo.POST("/logout", s.logout)

	// Any identity
	s.echo.GET(core.RouteUser, s.userPage)

	// Admin only; each handler mounts the admin page, which runs the gate.
	s.echo.GET(core.RouteAdmin, s.adminPage)
	admin := s.echo.Group(core.RouteAdmin + "/notes")
	admin.POST("", s.createNote)
	admin.PATCH("/:id", s.updateNote)
	admin.POST("/:id/toggle", s.toggleNote)
	admin.DELETE("/:id", s.deleteNote)
}
