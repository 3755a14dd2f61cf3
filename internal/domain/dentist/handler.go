package dentist

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc     *Service
	tokens  *auth.TokenIssuer
	loginMW []echo.MiddlewareFunc
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// WithLoginMiddleware adds middleware, typically a rate limiter, to the
// unauthenticated login route only.
func (h *Handler) WithLoginMiddleware(mw ...echo.MiddlewareFunc) *Handler {
	h.loginMW = append(h.loginMW, mw...)
	return h
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.Login, h.loginMW...)

	read := api.Group("", auth.RequireRole(auth.RoleDentist))
	read.GET("/auth/me", h.Me)
	read.PUT("/auth/password", h.ChangePassword)
	read.GET("/dentists", h.List)
	read.GET("/dentists/:id", h.Get)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/dentists", h.Create)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Dentist     *Dentist  `json:"dentist"`
}

// Roles grants every dentist the dentist role, plus admin when flagged.
func Roles(d *Dentist) []string {
	roles := []string{auth.RoleDentist}
	if d.IsAdmin {
		roles = append(roles, auth.RoleAdmin)
	}
	return roles
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	tok, exp, err := h.tokens.Issue(d.ID, Roles(d)...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{AccessToken: tok, TokenType: "Bearer", ExpiresAt: exp, Dentist: d})
}

func (h *Handler) Me(c echo.Context) error {
	id := auth.DentistIDFromContext(c.Request().Context())
	if id == 0 {
		return echo.NewHTTPError(http.StatusForbidden, "not signed in as a dentist")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id := auth.DentistIDFromContext(c.Request().Context())
	if id == 0 {
		return echo.NewHTTPError(http.StatusForbidden, "not signed in as a dentist")
	}
	var body struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ChangePassword(c.Request().Context(), id, body.Current, body.New); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Create(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.Create(c.Request().Context(), body.Name, body.Email, body.Password, body.IsAdmin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "dentist not found")
	case errors.Is(err, ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
