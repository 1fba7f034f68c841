package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/repository"
	"github.com/ademateus/field-service-portal/internal/service"
)

// BookingHandler books training seats and serves booking listings. The
// JWT carries the user ID; bookings hang off profiles, so every method
// first resolves the caller's profile.
type BookingHandler struct {
	Service  *service.BookingService
	Bookings *repository.BookingRepo
	Profiles *repository.ProfileRepo
}

func NewBookingHandler(svc *service.BookingService, b *repository.BookingRepo, p *repository.ProfileRepo) *BookingHandler {
	if svc == nil || b == nil || p == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Service: svc, Bookings: b, Profiles: p}
}

func (h *BookingHandler) callerProfile(c echo.Context) (model.Profile, bool) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Profile{}, false
	}
	p, err := h.Profiles.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		return model.Profile{}, false
	}
	return p, true
}

type bookingResp struct {
	Booking model.Booking         `json:"booking"`
	Session model.TrainingSession `json:"session"`
}

// BookSession handles POST /v1/sessions/:id/bookings. The seat claim is
// atomic: when two clients race for the last seat exactly one gets 201
// and the other gets 409.
func (h *BookingHandler) BookSession(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, idOK := pathID(c, "id")
	if !idOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	booking, sess, err := h.Service.BookSession(c.Request().Context(), id, prof.ID)
	if err != nil {
		return bookingErr(c, err)
	}
	return c.JSON(http.StatusCreated, bookingResp{Booking: booking, Session: sess})
}

type bookByTimeReq struct {
	Date      string `json:"date"`       // "YYYY-MM-DD"
	StartTime string `json:"start_time"` // "HH:MM" or "HH:MM:SS"
}

// BookByTime handles POST /v1/bookings. Mobile clients book by picking
// a date and a time of day; the session lookup happens server side.
// When the agenda has not been materialized for that pair the client is
// told the slot is not open yet, which is different from sold out.
func (h *BookingHandler) BookByTime(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookByTimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	booking, sess, err := h.Service.BookByTime(c.Request().Context(),
		strings.TrimSpace(req.Date), strings.TrimSpace(req.StartTime), prof.ID)
	if err != nil {
		return bookingErr(c, err)
	}
	return c.JSON(http.StatusCreated, bookingResp{Booking: booking, Session: sess})
}

func bookingErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date or time"})
	case errors.Is(err, service.ErrNotYetOpen):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no session open for this date and time"})
	case errors.Is(err, repository.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, repository.ErrSessionFull):
		return c.JSON(http.StatusConflict, echo.Map{"error": "session fully booked"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
}

// Mine handles GET /v1/bookings: the caller's bookings joined with
// their sessions, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list, err := h.Bookings.ListByProfile(c.Request().Context(), prof.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

// Recent handles GET /v1/bookings/recent?hours=24: fresh booking
// activity for the coordinator dashboard.
func (h *BookingHandler) Recent(c echo.Context) error {
	hours := 24
	if v := strings.TrimSpace(c.QueryParam("hours")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24*31 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hours"})
		}
		hours = n
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	list, err := h.Bookings.ListRecent(c.Request().Context(), since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

type presenceReq struct {
	Present *bool `json:"present"`
}

// SetPresence handles PATCH /v1/bookings/:id/presence. Attendance is a
// flat flag on the booking; it never gives the seat back.
func (h *BookingHandler) SetPresence(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req presenceReq
	if err := c.Bind(&req); err != nil || req.Present == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "present required"})
	}
	if err := h.Bookings.SetPresence(c.Request().Context(), id, *req.Present); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
