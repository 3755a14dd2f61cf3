package hipaa

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/clinic/clinic/internal/platform/db"
)

// Access log actions.
const (
	ActionCreate = "C"
	ActionRead   = "R"
	ActionUpdate = "U"
	ActionDelete = "D"
)

// AccessEntry is one row of the phi_access_log table: who touched which
// patient-identifying resource, and how.
type AccessEntry struct {
	ActorID      string
	ActorRoles   []string
	Action       string
	ResourceType string
	ResourceID   string
	Route        string
	Status       int
	IPAddress    string
	UserAgent    string
	RequestID    string
	AccessedAt   time.Time
}

// AccessRecorder persists access entries.
type AccessRecorder interface {
	RecordAccess(ctx context.Context, e *AccessEntry) error
}

// ActionForMethod maps an HTTP method to its access log action.
func ActionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

// AccessLog writes entries to phi_access_log.
type AccessLog struct {
	q db.Querier
}

// NewAccessLog builds an AccessLog over q, normally the *pgxpool.Pool.
func NewAccessLog(q db.Querier) *AccessLog {
	return &AccessLog{q: q}
}

func (a *AccessLog) RecordAccess(ctx context.Context, e *AccessEntry) error {
	if e.AccessedAt.IsZero() {
		e.AccessedAt = time.Now().UTC()
	}

	_, err := db.Conn(ctx, a.q).Exec(ctx, `
		INSERT INTO phi_access_log (
			actor_id, actor_roles, action, resource_type, resource_id,
			route, status, ip_address, user_agent, request_id, accessed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		e.ActorID, e.ActorRoles, e.Action, e.ResourceType, e.ResourceID,
		e.Route, e.Status, e.IPAddress, e.UserAgent, e.RequestID, e.AccessedAt,
	)
	if err != nil {
		return fmt.Errorf("record phi access: %w", err)
	}
	return nil
}
