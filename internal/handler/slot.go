package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ademateus/field-service-portal/internal/agenda"
	"github.com/ademateus/field-service-portal/internal/model"
	"github.com/ademateus/field-service-portal/internal/repository"
)

// SlotHandler exposes coordinator CRUD over the recurring slot
// templates the materializer expands.
type SlotHandler struct {
	Slots        *repository.SlotRepo
	DefaultSeats uint32
}

func NewSlotHandler(s *repository.SlotRepo, defaultSeats uint32) *SlotHandler {
	if s == nil {
		panic("nil repository passed to NewSlotHandler")
	}
	return &SlotHandler{Slots: s, DefaultSeats: defaultSeats}
}

// List handles GET /v1/slots. active=true narrows to enabled templates.
func (h *SlotHandler) List(c echo.Context) error {
	var (
		list []model.SlotTemplate
		err  error
	)
	if c.QueryParam("active") == "true" {
		list, err = h.Slots.ListActive(c.Request().Context())
	} else {
		list, err = h.Slots.List(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

type createSlotReq struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Description  string `json:"description"`
	DefaultSeats uint32 `json:"default_seats"`
}

// Create handles POST /v1/slots. Times accept "HH:MM" or "HH:MM:SS";
// the start must come before the end on the same day.
func (h *SlotHandler) Create(c echo.Context) error {
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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
	seats := req.DefaultSeats
	if seats == 0 {
		seats = h.DefaultSeats
	}

	slot := model.SlotTemplate{
		StartTime:    start,
		EndTime:      end,
		DefaultSeats: seats,
		Active:       true,
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		slot.Description = &v
	}
	if err := h.Slots.Create(c.Request().Context(), &slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, slot)
}

type patchSlotReq struct {
	Active       *bool   `json:"active"`
	DefaultSeats *uint32 `json:"default_seats"`
}

// Patch handles PATCH /v1/slots/:id for toggling a template and
// adjusting its seat count. Disabled templates produce no sessions on
// the next materializer run; already materialized sessions keep their
// seats.
func (h *SlotHandler) Patch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var req patchSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Active == nil && req.DefaultSeats == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	ctx := c.Request().Context()
	if req.Active != nil {
		if err := h.Slots.SetActive(ctx, id, *req.Active); err != nil {
			return slotErr(c, err)
		}
	}
	if req.DefaultSeats != nil {
		if *req.DefaultSeats == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "default_seats must be positive"})
		}
		if err := h.Slots.UpdateSeats(ctx, id, *req.DefaultSeats); err != nil {
			return slotErr(c, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/slots/:id.
func (h *SlotHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	if err := h.Slots.Delete(c.Request().Context(), id); err != nil {
		return slotErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func slotErr(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrSlotNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
