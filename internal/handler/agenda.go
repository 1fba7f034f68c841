package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/repository"
	"github.com/ademateus/field-service-portal/internal/service"
)

// AgendaHandler drives the monthly materializer and the calendar
// exceptions that blank out individual dates.
type AgendaHandler struct {
	Agenda     *service.AgendaService
	Exceptions *repository.ExceptionRepo
}

func NewAgendaHandler(a *service.AgendaService, e *repository.ExceptionRepo) *AgendaHandler {
	if a == nil || e == nil {
		panic("nil dependency passed to NewAgendaHandler")
	}
	return &AgendaHandler{Agenda: a, Exceptions: e}
}

type materializeReq struct {
	Month string `json:"month"` // "YYYY-MM"
}

// Materialize handles POST /v1/agenda/materialize. It expands every
// active slot template over the business days of the requested month.
// Running it twice for the same month is safe: the second run creates
// nothing and reports the skips.
func (h *AgendaHandler) Materialize(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req materializeReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Month) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month required"})
	}

	res, err := h.Agenda.Materialize(c.Request().Context(), strings.TrimSpace(req.Month), &userID)
	if err != nil {
		switch {
		case errors.Is(err, agenda.ErrInvalidMonth):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month, expected YYYY-MM"})
		case errors.Is(err, agenda.ErrNoActiveSlots):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no active slot templates"})
		case errors.Is(err, agenda.ErrTooManySlots):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "active slots exceed the daily session limit"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "materialize failed"})
	}
	if res.Nothing() {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "nothing to create",
			"result":  res,
		})
	}
	return c.JSON(http.StatusCreated, res)
}

// ListExceptions handles GET /v1/agenda/exceptions.
func (h *AgendaHandler) ListExceptions(c echo.Context) error {
	list, err := h.Exceptions.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

type createExceptionReq struct {
	Date   string `json:"date"` // "YYYY-MM-DD"
	Reason string `json:"reason"`
}

// CreateException handles POST /v1/agenda/exceptions. A blocked date is
// skipped by every future materializer run, same as a weekend. Sessions
// already materialized on that date are untouched.
func (h *AgendaHandler) CreateException(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createExceptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date := strings.TrimSpace(req.Date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	exc := model.ScheduleException{
		Date:      date,
		Blocked:   true,
		CreatedBy: &userID,
	}
	if v := strings.TrimSpace(req.Reason); v != "" {
		exc.Reason = &v
	}
	if err := h.Exceptions.Create(c.Request().Context(), &exc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "date already blocked"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, exc)
}

// DeleteException handles DELETE /v1/agenda/exceptions/:id.
func (h *AgendaHandler) DeleteException(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exception id"})
	}
	if err := h.Exceptions.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exception not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
