package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/assessment"
	"github.com/clinic/clinic/internal/domain/questionnaire"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/migrations"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Env:                env,
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		RequestTimeout:     5 * time.Second,
		BodyLimit:          "1M",
		LegacyReadRetries:  1,
		LegacyReadInterval: time.Millisecond,
		CORSOrigins:        []string{"http://localhost:3000"},
	}
}

func newTestServer(t *testing.T, env string) (*app, *echo.Echo) {
	t.Helper()
	a, err := buildApp(testConfig(env), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildApp() error: %v", err)
	}
	e := echo.New()
	a.routes(e)
	return a, e
}

func TestResolveSigningKey(t *testing.T) {
	key, generated, err := resolveSigningKey("configured")
	if err != nil || generated || string(key) != "configured" {
		t.Errorf("configured secret: got %q generated=%v err=%v", key, generated, err)
	}

	k1, generated, err := resolveSigningKey("")
	if err != nil || !generated || len(k1) != 32 {
		t.Fatalf("random key: got len %d generated=%v err=%v", len(k1), generated, err)
	}
	k2, _, _ := resolveSigningKey("")
	if bytes.Equal(k1, k2) {
		t.Error("expected distinct random keys")
	}
}

func TestMigrationsFS_DefaultsToEmbedded(t *testing.T) {
	if migrationsFS("") != migrations.FS {
		t.Error("expected embedded migrations when no dir is given")
	}
}

func TestRoutes_Registered(t *testing.T) {
	_, e := newTestServer(t, "production")

	have := make(map[string]bool)
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /health",
		"GET /health/db",
		"POST /api/v1/auth/login",
		"POST /api/v1/patients",
		"POST /api/v1/patients/lookup",
		"GET /api/v1/patients/:id",
		"POST /api/v1/questionnaires",
		"GET /api/v1/questionnaires/statistics",
		"POST /api/v1/questionnaires/recompute",
		"GET /api/v1/patients/:id/legacy/risk",
	}
	for _, w := range want {
		if !have[w] {
			t.Errorf("route %s not registered", w)
		}
	}
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	_, e := newTestServer(t, "production")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on /health")
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected request id on /health")
	}
}

func TestRoutes_RequireTokenOutsideDev(t *testing.T) {
	_, e := newTestServer(t, "production")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestRoutes_KioskCannotListPatients(t *testing.T) {
	a, e := newTestServer(t, "production")

	tok, _, err := a.tokens.IssueKiosk("front-desk", time.Hour)
	if err != nil {
		t.Fatalf("IssueKiosk() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for kiosk token, got %d", rec.Code)
	}
}

func TestKioskToken_VerifiesWithServerConfig(t *testing.T) {
	a, _ := newTestServer(t, "production")

	tok, _, err := authIssuer([]byte("test-secret"), time.Hour).IssueKiosk("tablet-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueKiosk() error: %v", err)
	}
	claims, err := auth.ParseToken(a.jwt, tok)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if !auth.HasRole(claims.Roles, auth.RoleKiosk) {
		t.Errorf("expected kiosk role, got %v", claims.Roles)
	}
}

func TestRenderStatistics(t *testing.T) {
	var buf bytes.Buffer
	renderStatistics(&buf, &questionnaire.Statistics{
		Total: 10,
		ByRiskLevel: map[assessment.RiskLevel]int{
			assessment.RiskHigh:    1,
			assessment.RiskMedium:  2,
			assessment.RiskLow:     3,
			assessment.RiskMinimal: 4,
		},
	})

	out := buf.String()
	for _, s := range []string{"RISK LEVEL", "high", "medium", "minimal", "TOTAL", "10"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output:\n%s", s, out)
		}
	}
}

func TestRenderRecompute(t *testing.T) {
	var buf bytes.Buffer
	renderRecompute(&buf, &questionnaire.RecomputeReport{
		Scanned: 3,
		DryRun:  true,
		Changes: []questionnaire.RiskChange{
			{QuestionnaireID: 11, PatientID: 4, From: assessment.RiskLow, To: assessment.RiskHigh},
		},
	})

	out := buf.String()
	for _, s := range []string{"dry run", "scanned 3", "11", "--dry-run"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output:\n%s", s, out)
		}
	}
}

func TestRenderRecompute_NoChanges(t *testing.T) {
	var buf bytes.Buffer
	renderRecompute(&buf, &questionnaire.RecomputeReport{Scanned: 5})

	if !strings.Contains(buf.String(), "All risk levels are current.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderMigrationStatus(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	renderMigrationStatus(&buf, []db.MigrationStatus{
		{Version: 1, Name: "001_dentist.sql", Applied: true, AppliedAt: &at},
		{Version: 2, Name: "002_patient.sql"},
	})

	out := buf.String()
	for _, s := range []string{"001_dentist.sql", "2026-03-01 09:30:00", "pending", "1 migration(s) pending"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output:\n%s", s, out)
		}
	}
}
