package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserRolesKey, roles))
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole_Allowed(t *testing.T) {
	c := contextWithRoles(RoleDentist)
	if err := RequireRole(RoleDentist)(okHandler)(c); err != nil {
		t.Errorf("expected access, got %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	c := contextWithRoles(RoleKiosk)
	err := RequireRole(RoleDentist)(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_AnyOf(t *testing.T) {
	c := contextWithRoles(RoleKiosk)
	if err := RequireRole(RoleKiosk, RoleDentist)(okHandler)(c); err != nil {
		t.Errorf("expected kiosk to pass, got %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	c := contextWithRoles(RoleAdmin)
	if err := RequireRole(RoleDentist)(okHandler)(c); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	c := contextWithRoles()
	if err := RequireRole(RoleDentist)(okHandler)(c); err == nil {
		t.Error("expected denial without roles")
	}
}
