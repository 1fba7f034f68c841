package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/repository"
)

// SessionHandler serves the materialized training calendar: listings
// for the booking screens, manual session creation and the roster a
// coordinator sees per session.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Bookings *repository.BookingRepo
}

func NewSessionHandler(s *repository.SessionRepo, b *repository.BookingRepo) *SessionHandler {
	if s == nil || b == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: s, Bookings: b}
}

// List handles GET /v1/sessions. Optional filters: month=YYYY-MM or
// date=YYYY-MM-DD; month wins when both are sent.
func (h *SessionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if m := strings.TrimSpace(c.QueryParam("month")); m != "" {
		year, month, err := agenda.ParseMonth(m)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month, expected YYYY-MM"})
		}
		list, err := h.Sessions.ListByMonth(ctx, year, month)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, list)
	}
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		list, err := h.Sessions.ListByDate(ctx, d)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, list)
	}

	list, err := h.Sessions.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	sess, err := h.Sessions.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, sess)
}

type createSessionReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TotalSeats  uint32 `json:"total_seats"`
}

// Create handles POST /v1/sessions for one-off sessions outside the
// materialized grid (a special training on a Saturday, say). The same
// uniqueness rule applies: one session per date and start time.
func (h *SessionHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date := strings.TrimSpace(req.Date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	start, err := agenda.NormalizeClock(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := agenda.NormalizeClock(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}
	if start >= end {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be before end_time"})
	}
	if req.TotalSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Training " + agenda.ShortClock(start)
	}

	sess := model.TrainingSession{
		Title:          title,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Active:         true,
		CreatedBy:      &userID,
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		sess.Description = &v
	}
	if err := h.Sessions.Create(c.Request().Context(), &sess); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a session already exists at this date and time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, sess)
}

// Delete handles DELETE /v1/sessions/:id. Bookings cascade with the
// session.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Roster handles GET /v1/sessions/:id/bookings: the attendee list with
// presence flags, as the coordinator's attendance screen shows it.
func (h *SessionHandler) Roster(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Sessions.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	list, err := h.Bookings.ListBySession(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}
