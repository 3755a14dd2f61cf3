package patient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Tablet self-registration
	kiosk := api.Group("", auth.RequireRole(auth.RoleKiosk, auth.RoleDentist))
	kiosk.POST("/patients", h.Register)
	kiosk.POST("/patients/lookup", h.Lookup)

	read := api.Group("", auth.RequireRole(auth.RoleDentist))
	read.GET("/patients", h.List)
	read.GET("/patients/mine", h.ListMine)
	read.GET("/patients/:id", h.Get)
	read.PUT("/patients/:id", h.Update)
	read.PUT("/patients/:id/dentist", h.AssignDentist)
	read.GET("/dentists/:id/patients", h.ListByDentist)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/patients/:id", h.Delete)
}

func (h *Handler) Register(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = 0
	// Self-registration cannot pick a dentist.
	if !auth.HasRole(auth.RolesFromContext(c.Request().Context()), auth.RoleDentist) {
		p.DentistID = nil
	}
	if err := h.svc.Register(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Lookup(c echo.Context) error {
	var body struct {
		CNP string `json:"cnp"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.FindByCNP(c.Request().Context(), body.CNP)
	if err != nil {
		return httpError(err)
	}
	// The kiosk only needs the id to attach a questionnaire.
	if !auth.HasRole(auth.RolesFromContext(c.Request().Context()), auth.RoleDentist) {
		return c.JSON(http.StatusOK, map[string]int64{"id": p.ID})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListMine(c echo.Context) error {
	dentistID := auth.DentistIDFromContext(c.Request().Context())
	if dentistID == 0 {
		return echo.NewHTTPError(http.StatusForbidden, "not signed in as a dentist")
	}
	return h.listForDentist(c, dentistID)
}

func (h *Handler) ListByDentist(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return h.listForDentist(c, id)
}

func (h *Handler) listForDentist(c echo.Context, dentistID int64) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDentist(c.Request().Context(), dentistID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) AssignDentist(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		DentistID *int64 `json:"dentist_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignDentist(c.Request().Context(), id, body.DentistID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
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
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrDuplicateCNP):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
