package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
)

// Logger writes one access log line per request. Health probes are not
// logged. Paths are logged as the route pattern so ids never reach the log.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.IsPublicPath(c.Path()) && c.Path() != "/api/v1/auth/login" {
				return next(c)
			}

			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				// Let echo write the error so the logged status is final.
				c.Error(err)
			}

			status := c.Response().Status
			var evt *zerolog.Event
			switch {
			case status >= 500:
				evt = logger.Error().Err(err)
			case status >= 400:
				evt = logger.Warn()
			default:
				evt = logger.Info()
			}

			evt.
				Str("request_id", GetRequestID(c)).
				Str("method", req.Method).
				Str("route", c.Path()).
				Int("status", status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Str("user_id", auth.UserIDFromContext(req.Context())).
				Msg("request")

			return nil
		}
	}
}
