package legacy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	repo := newMockRepo()
	return NewHandler(newTestService(repo)), repo, echo.New()
}

func TestHandler_GetRisk(t *testing.T) {
	h, repo, e := newTestHandler()
	repo.InsertDiseaseFlags(context.Background(), &DiseaseFlags{PatientID: 4, CoagulationDisorder: true})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("4")

	if err := h.GetRisk(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetSnapshot_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	err := h.GetSnapshot(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.GetRisk(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api/v1"))

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+":"+r.Path] = true
	}
	for _, want := range []string{"GET:/api/v1/patients/:id/legacy", "GET:/api/v1/patients/:id/legacy/risk"} {
		if !routes[want] {
			t.Errorf("missing expected route: %s", want)
		}
	}
}
