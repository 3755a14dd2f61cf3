package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthTimeout = 5 * time.Second

// PoolStats is the connection pool snapshot reported by /health/db.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

// HealthReport is the /health/db response body.
type HealthReport struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	// SchemaVersion is the highest applied migration, or 0 before the
	// first `migrate up`.
	SchemaVersion int        `json:"schema_version"`
	Pool          *PoolStats `json:"pool"`
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

func healthReport(pingErr error, schemaVersion int, stats *PoolStats) (int, *HealthReport) {
	if pingErr != nil {
		return http.StatusServiceUnavailable, &HealthReport{
			Status: "unhealthy",
			Error:  pingErr.Error(),
			Pool:   stats,
		}
	}
	return http.StatusOK, &HealthReport{Status: "healthy", SchemaVersion: schemaVersion, Pool: stats}
}

// schemaVersion reads the latest applied migration. A missing
// schema_migrations table reads as 0.
func schemaVersion(ctx context.Context, q Querier) int {
	var v int
	if err := q.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0
	}
	return v
}

// HealthHandler pings the database with a short deadline and reports pool
// stats and the schema version.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()

		version := 0
		err := pool.Ping(ctx)
		if err == nil {
			version = schemaVersion(ctx, pool)
		}
		code, body := healthReport(err, version, GetPoolStats(pool))
		return c.JSON(code, body)
	}
}
