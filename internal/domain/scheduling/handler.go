package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinsched/clinsched/internal/domain/recurrence"
	"github.com/clinsched/clinsched/internal/platform/auth"
	"github.com/clinsched/clinsched/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	readGroup.GET("/appointments", h.List)
	readGroup.GET("/appointments/:id", h.Get)
	readGroup.GET("/providers/:id/slots", h.GetSlots)
	readGroup.POST("/appointments/check", h.Check)
	readGroup.POST("/appointments/check-recurring", h.CheckRecurring)
	readGroup.POST("/appointments/suggest", h.Suggest)
	readGroup.POST("/appointments/suggest-recurring", h.SuggestRecurring)

	writeGroup := api.Group("", auth.RequireRole("admin", "registrar"))
	writeGroup.POST("/appointments", h.Create)
	writeGroup.PUT("/appointments/:id", h.Reschedule)
	writeGroup.PUT("/appointments/:id/status", h.UpdateStatus)
	writeGroup.DELETE("/appointments/:id", h.Delete)
}

// writeError maps conflict rejections to 409 with the report as the body;
// everything else from the service is a bad request.
func writeError(c echo.Context, err error) error {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, conflict.Report)
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	providerID, err := uuid.Parse(c.QueryParam("provider_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "provider_id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByProvider(c.Request().Context(), providerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type rescheduleRequest struct {
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Start.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start is required")
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, req.Start, req.DurationMinutes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Check runs the conflict engine without booking. The report comes back 200
// whether or not it found conflicts; only malformed input is an error.
func (h *Handler) Check(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	report, err := h.svc.CheckConflicts(c.Request().Context(), &a)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

type recurringRequest struct {
	Appointment Appointment        `json:"appointment"`
	Pattern     recurrence.Pattern `json:"pattern"`
}

func (h *Handler) CheckRecurring(c echo.Context) error {
	var req recurringRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	report, err := h.svc.CheckRecurring(c.Request().Context(), &req.Appointment, req.Pattern)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

type suggestRequest struct {
	Appointment    Appointment `json:"appointment"`
	RequestedStart time.Time   `json:"requested_start"`
	MaxSuggestions int         `json:"max_suggestions,omitempty"`
}

func (h *Handler) Suggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RequestedStart.IsZero() {
		req.RequestedStart = req.Appointment.Span.Start
	}
	if req.MaxSuggestions <= 0 {
		req.MaxSuggestions = 5
	}
	slots, err := h.svc.SuggestAlternatives(c.Request().Context(), &req.Appointment, req.RequestedStart, req.MaxSuggestions)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"suggestions": slots})
}

type suggestRecurringRequest struct {
	Appointment    Appointment        `json:"appointment"`
	Pattern        recurrence.Pattern `json:"pattern"`
	MaxSuggestions int                `json:"max_suggestions,omitempty"`
	HorizonDays    int                `json:"horizon_days,omitempty"`
}

func (h *Handler) SuggestRecurring(c echo.Context) error {
	var req suggestRecurringRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MaxSuggestions <= 0 {
		req.MaxSuggestions = 3
	}
	starts, err := h.svc.SuggestRecurringAlternatives(c.Request().Context(), &req.Appointment, req.Pattern, req.MaxSuggestions, req.HorizonDays)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"suggestions": starts})
}

// GetSlots lists open start times for a provider and day:
// GET /providers/:id/slots?date=2025-03-03&duration=30&step=15
func (h *Handler) GetSlots(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	duration := intQueryParam(c, "duration", 30)
	step := intQueryParam(c, "step", DefaultStepMinutes)

	slots, err := h.svc.GetAvailableSlots(c.Request().Context(), providerID, date, duration, step)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"date": c.QueryParam("date"), "slots": slots})
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
