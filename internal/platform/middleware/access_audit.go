package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/hipaa"
)

const auditWriteTimeout = 2 * time.Second

// auditedResource names the patient-identifying resource behind an API
// route, or "" for routes that expose no patient data.
func auditedResource(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/v1/")
	if !ok {
		return ""
	}
	resource := ""
	for _, s := range strings.Split(rest, "/") {
		switch s {
		case "legacy":
			return "legacy"
		case "questionnaires":
			return "questionnaire"
		case "patients":
			resource = "patient"
		}
	}
	return resource
}

// AccessAudit records successful requests against patient, questionnaire
// and legacy routes to rec. Denied requests are not recorded here; the
// access log already carries them. Recording failures are logged and never
// change the response.
func AccessAudit(rec hipaa.AccessRecorder, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			resource := auditedResource(c.Path())
			if resource == "" {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			if status >= http.StatusBadRequest {
				return err
			}

			req := c.Request()
			ctx := req.Context()
			entry := &hipaa.AccessEntry{
				ActorID:      auth.UserIDFromContext(ctx),
				ActorRoles:   auth.RolesFromContext(ctx),
				Action:       hipaa.ActionForMethod(req.Method),
				ResourceType: resource,
				ResourceID:   c.Param("id"),
				Route:        c.Path(),
				Status:       status,
				IPAddress:    c.RealIP(),
				UserAgent:    req.UserAgent(),
				RequestID:    GetRequestID(c),
			}

			wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
			defer cancel()
			if rerr := rec.RecordAccess(wctx, entry); rerr != nil {
				logger.Error().Err(rerr).
					Str("request_id", entry.RequestID).
					Str("route", entry.Route).
					Msg("phi access not recorded")
			}
			return err
		}
	}
}
