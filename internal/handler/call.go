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

// CallHandler runs the service call workflow: clients open calls,
// coordinators assign technicians, technicians drive the status to
// FINISHED with completion notes and the on-site signature reference.
type CallHandler struct {
	Calls    *repository.ServiceCallRepo
	Profiles *repository.ProfileRepo
}

func NewCallHandler(calls *repository.ServiceCallRepo, profiles *repository.ProfileRepo) *CallHandler {
	if calls == nil || profiles == nil {
		panic("nil repository passed to NewCallHandler")
	}
	return &CallHandler{Calls: calls, Profiles: profiles}
}

func (h *CallHandler) callerProfile(c echo.Context) (model.Profile, bool) {
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

type createCallReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Address     string `json:"address"`
}

var validPriorities = map[string]bool{"LOW": true, "NORMAL": true, "HIGH": true, "URGENT": true}

// Create handles POST /v1/calls. New calls always start OPEN and
// unassigned.
func (h *CallHandler) Create(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createCallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	priority := strings.ToUpper(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = "NORMAL"
	}
	if !validPriorities[priority] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
	}

	call := model.ServiceCall{
		ClientID: prof.ID,
		Title:    title,
		Status:   model.CallStatusOpen,
		Priority: priority,
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		call.Description = &v
	}
	if v := strings.TrimSpace(req.Address); v != "" {
		call.Address = &v
	}
	if err := h.Calls.Create(c.Request().Context(), &call); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, call)
}

// List handles GET /v1/calls. Clients see their own calls, technicians
// the ones assigned to them, coordinators everything.
func (h *CallHandler) List(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	var (
		list []model.ServiceCall
		err  error
	)
	switch prof.Role {
	case model.RoleClient:
		list, err = h.Calls.ListForClient(ctx, prof.ID)
	case model.RoleTechnician:
		list, err = h.Calls.ListForTechnician(ctx, prof.ID)
	default:
		list, err = h.Calls.ListAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/calls/:id with the same visibility rules as List.
func (h *CallHandler) Get(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, idOK := pathID(c, "id")
	if !idOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call id"})
	}
	call, err := h.Calls.GetByID(c.Request().Context(), id)
	if err != nil {
		return callErr(c, err)
	}
	if !canSeeCall(prof, call) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, call)
}

func canSeeCall(p model.Profile, call model.ServiceCall) bool {
	switch p.Role {
	case model.RoleCoordinator:
		return true
	case model.RoleTechnician:
		return call.TechnicianID != nil && *call.TechnicianID == p.ID
	default:
		return call.ClientID == p.ID
	}
}

type assignCallReq struct {
	TechnicianID  uint64 `json:"technician_id"`
	ScheduledDate string `json:"scheduled_date"` // "YYYY-MM-DD", optional
	ScheduledTime string `json:"scheduled_time"` // "HH:MM", optional
}

// Assign handles PATCH /v1/calls/:id/assign. Assignment moves an OPEN
// call to IN_PROGRESS; reassigning an IN_PROGRESS call keeps its status.
func (h *CallHandler) Assign(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call id"})
	}
	var req assignCallReq
	if err := c.Bind(&req); err != nil || req.TechnicianID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "technician_id required"})
	}

	ctx := c.Request().Context()
	call, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return callErr(c, err)
	}
	if call.Status == model.CallStatusFinished || call.Status == model.CallStatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "call already closed"})
	}

	tech, err := h.Profiles.GetByID(ctx, req.TechnicianID)
	if err != nil || tech.Role != model.RoleTechnician {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "technician not found"})
	}

	var date, clock *string
	if v := strings.TrimSpace(req.ScheduledDate); v != "" {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scheduled_date"})
		}
		date = &v
	}
	if v := strings.TrimSpace(req.ScheduledTime); v != "" {
		norm, err := agenda.NormalizeClock(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scheduled_time"})
		}
		clock = &norm
	}

	if err := h.Calls.Assign(ctx, id, tech.ID, date, clock); err != nil {
		return callErr(c, err)
	}
	call, err = h.Calls.GetByID(ctx, id)
	if err != nil {
		return callErr(c, err)
	}
	return c.JSON(http.StatusOK, call)
}

type callStatusReq struct {
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	SignatureRef string `json:"signature_ref"`
}

// statusTransitions lists the legal moves. Closed calls never reopen.
var statusTransitions = map[string]map[string]bool{
	model.CallStatusOpen: {
		model.CallStatusInProgress: true,
		model.CallStatusCancelled:  true,
	},
	model.CallStatusInProgress: {
		model.CallStatusFinished:  true,
		model.CallStatusCancelled: true,
	},
}

// UpdateStatus handles PATCH /v1/calls/:id/status. A technician may only
// touch calls assigned to them; coordinators may touch any call.
// FINISHED stamps the completion time and records notes plus the
// signature reference captured on site.
func (h *CallHandler) UpdateStatus(c echo.Context) error {
	prof, ok := h.callerProfile(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, idOK := pathID(c, "id")
	if !idOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call id"})
	}
	var req callStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !model.ValidCallStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx := c.Request().Context()
	call, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return callErr(c, err)
	}
	if prof.Role == model.RoleTechnician {
		if call.TechnicianID == nil || *call.TechnicianID != prof.ID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	if !statusTransitions[call.Status][status] {
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
	}

	var notes, sig *string
	if v := strings.TrimSpace(req.Notes); v != "" {
		notes = &v
	}
	if v := strings.TrimSpace(req.SignatureRef); v != "" {
		sig = &v
	}
	if err := h.Calls.UpdateStatus(ctx, id, status, notes, sig); err != nil {
		return callErr(c, err)
	}
	call, err = h.Calls.GetByID(ctx, id)
	if err != nil {
		return callErr(c, err)
	}
	return c.JSON(http.StatusOK, call)
}

func callErr(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrCallNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "call not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
