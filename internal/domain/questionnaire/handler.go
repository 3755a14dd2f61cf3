package questionnaire

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

// LegacySyncHeader is set to "failed" when a questionnaire was saved but its
// legacy projection was not.
const LegacySyncHeader = "X-Legacy-Sync"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Tablet submissions
	submit := api.Group("", auth.RequireRole(auth.RoleKiosk, auth.RoleDentist))
	submit.POST("/questionnaires", h.Create)

	read := api.Group("", auth.RequireRole(auth.RoleDentist))
	read.GET("/questionnaires/statistics", h.Statistics)
	read.GET("/questionnaires/high-risk", h.HighRisk)
	read.GET("/questionnaires/:id", h.Get)
	read.GET("/patients/:id/questionnaires", h.ListByPatient)
	read.PUT("/questionnaires/:id", h.Update)
	read.PATCH("/questionnaires/:id/status", h.SetStatus)
	read.POST("/questionnaires/:id/assess", h.Reassess)
	read.DELETE("/questionnaires/:id", h.Delete)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/questionnaires/recompute", h.RecomputeAll)
}

type createResponse struct {
	*Questionnaire
	LegacySync SyncResult `json:"legacy_sync"`
}

func (h *Handler) Create(c echo.Context) error {
	var q Questionnaire
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q.ID = 0

	sync, err := h.svc.Create(c.Request().Context(), &q)
	if err != nil {
		return httpError(err)
	}
	if sync.Attempted && !sync.OK {
		c.Response().Header().Set(LegacySyncHeader, "failed")
	}
	return c.JSON(http.StatusCreated, createResponse{Questionnaire: &q, LegacySync: sync})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	q, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var q Questionnaire
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q.ID = id
	if err := h.svc.Update(c.Request().Context(), &q); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetStatus(c.Request().Context(), id, body.Status); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Reassess(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	q, err := h.svc.Reassess(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) HighRisk(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.HighRisk(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Statistics(c echo.Context) error {
	st, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) RecomputeAll(c echo.Context) error {
	dryRun, _ := strconv.ParseBool(c.QueryParam("dry_run"))
	report, err := h.svc.RecomputeAll(c.Request().Context(), dryRun)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "questionnaire not found")
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
