package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ademateus/field-service-portal/internal/handler"
	"github.com/ademateus/field-service-portal/internal/middleware"
	"github.com/ademateus/field-service-portal/internal/model"
)

// Handlers bundles every handler the portal mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Slot    *handler.SlotHandler
	Agenda  *handler.AgendaHandler
	Session *handler.SessionHandler
	Booking *handler.BookingHandler
	Call    *handler.CallHandler
	Events  *handler.EventsHandler
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoints. Unauthenticated
// operations live under /v1/auth; /v1/me sits behind the JWT.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes a refresh token in the body or a bearer header, so it
	// stays outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleClient, model.RoleTechnician, model.RoleCoordinator))
	auth.GET("/me", a.Me)
}

// RegisterPortal registers the portal API under /v1. Every route sits
// behind the JWT; write access to the agenda is coordinator-only, and
// booking is for clients (coordinators may book on a client's behalf
// through the same endpoints).
func RegisterPortal(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	any := middleware.RequireRole(model.RoleClient, model.RoleTechnician, model.RoleCoordinator)
	coordinator := middleware.RequireRole(model.RoleCoordinator)

	// Profiles.
	auth.GET("/profile", h.Profile.Me, any)
	auth.PATCH("/profile", h.Profile.Update, any)
	auth.GET("/profiles", h.Profile.ListByRole, coordinator)

	// Slot templates.
	auth.GET("/slots", h.Slot.List, any)
	auth.POST("/slots", h.Slot.Create, coordinator)
	auth.PATCH("/slots/:id", h.Slot.Patch, coordinator)
	auth.DELETE("/slots/:id", h.Slot.Delete, coordinator)

	// Agenda: materializer and blocked dates.
	auth.POST("/agenda/materialize", h.Agenda.Materialize, coordinator)
	auth.GET("/agenda/exceptions", h.Agenda.ListExceptions, coordinator)
	auth.POST("/agenda/exceptions", h.Agenda.CreateException, coordinator)
	auth.DELETE("/agenda/exceptions/:id", h.Agenda.DeleteException, coordinator)

	// Training sessions.
	auth.GET("/sessions", h.Session.List, any)
	auth.GET("/sessions/:id", h.Session.Get, any)
	auth.POST("/sessions", h.Session.Create, coordinator)
	auth.DELETE("/sessions/:id", h.Session.Delete, coordinator)
	auth.GET("/sessions/:id/bookings", h.Session.Roster, coordinator)

	// Bookings and attendance.
	client := middleware.RequireRole(model.RoleClient, model.RoleCoordinator)
	auth.POST("/sessions/:id/bookings", h.Booking.BookSession, client)
	auth.POST("/bookings", h.Booking.BookByTime, client)
	auth.GET("/bookings", h.Booking.Mine, any)
	auth.GET("/bookings/recent", h.Booking.Recent, coordinator)
	auth.PATCH("/bookings/:id/presence", h.Booking.SetPresence, coordinator)

	// Service calls.
	staff := middleware.RequireRole(model.RoleTechnician, model.RoleCoordinator)
	auth.POST("/calls", h.Call.Create, middleware.RequireRole(model.RoleClient))
	auth.GET("/calls", h.Call.List, any)
	auth.GET("/calls/:id", h.Call.Get, any)
	auth.PATCH("/calls/:id/assign", h.Call.Assign, coordinator)
	auth.PATCH("/calls/:id/status", h.Call.UpdateStatus, staff)

	// Change feed.
	auth.GET("/events", h.Events.Stream, any)
}
