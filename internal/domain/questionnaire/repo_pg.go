package questionnaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/domain/assessment"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/hipaa"
)

const pgForeignKeyViolation = "23503"

type repoPG struct {
	pool     *pgxpool.Pool
	boundary *hipaa.Boundary
}

// NewRepo creates the questionnaire repository. Each JSONB section is one
// flat object, so its allow-listed keys (allergies, medications) pass through
// the boundary like a request body would.
func NewRepo(pool *pgxpool.Pool, b *hipaa.Boundary) Repository {
	return &repoPG{pool: pool, boundary: b}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const questionnaireCols = `id, patient_id, status, medical_conditions, general_health, dental_exam,
	medical_alerts, risk_level, created_at, updated_at`

type sectionsJSON struct {
	medical, general, dental, alerts []byte
}

func (r *repoPG) encode(q *Questionnaire) (*sectionsJSON, error) {
	var s sectionsJSON
	var err error
	if s.medical, err = r.protectSection(q.MedicalConditions); err != nil {
		return nil, err
	}
	if s.general, err = r.protectSection(q.GeneralHealth); err != nil {
		return nil, err
	}
	if s.dental, err = r.protectSection(q.DentalExam); err != nil {
		return nil, err
	}
	if s.alerts, err = r.encodeAlerts(q.MedicalAlerts); err != nil {
		return nil, err
	}
	return &s, nil
}

// encodeAlerts stores allergy and medication messages encrypted, since they
// quote the allergies and medications sections verbatim.
func (r *repoPG) encodeAlerts(alerts []assessment.Alert) ([]byte, error) {
	if alerts == nil {
		alerts = []assessment.Alert{}
	}
	b, err := json.Marshal(assessment.MapPatientText(alerts, r.boundary.ProtectValue))
	if err != nil {
		return nil, fmt.Errorf("encode alerts: %w", err)
	}
	return b, nil
}

func (r *repoPG) decodeAlerts(raw []byte) ([]assessment.Alert, error) {
	alerts := []assessment.Alert{}
	if len(raw) == 0 {
		return alerts, nil
	}
	if err := json.Unmarshal(raw, &alerts); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	return assessment.MapPatientText(alerts, r.boundary.RevealValue), nil
}

func (r *repoPG) protectSection(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode section: %w", err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("encode section: %w", err)
	}
	return json.Marshal(r.boundary.ProtectOnWrite(obj))
}

func (r *repoPG) revealSection(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("decode section: %w", err)
	}
	plain, err := json.Marshal(r.boundary.RevealOnRead(obj))
	if err != nil {
		return fmt.Errorf("decode section: %w", err)
	}
	return json.Unmarshal(plain, dst)
}

func (r *repoPG) Create(ctx context.Context, q *Questionnaire) error {
	s, err := r.encode(q)
	if err != nil {
		return fmt.Errorf("questionnaire create: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO questionnaire (patient_id, status, medical_conditions, general_health, dental_exam,
			medical_alerts, risk_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		q.PatientID, q.Status, s.medical, s.general, s.dental, s.alerts, q.RiskLevel,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrPatientNotFound
		}
		return fmt.Errorf("questionnaire create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Questionnaire, error) {
	q, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+questionnaireCols+` FROM questionnaire WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("questionnaire get: %w", err)
	}
	return q, nil
}

func (r *repoPG) Update(ctx context.Context, q *Questionnaire) error {
	s, err := r.encode(q)
	if err != nil {
		return fmt.Errorf("questionnaire update: %w", err)
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE questionnaire SET
			status = $2, medical_conditions = $3, general_health = $4, dental_exam = $5,
			medical_alerts = $6, risk_level = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		q.ID, q.Status, s.medical, s.general, s.dental, s.alerts, q.RiskLevel,
	).Scan(&q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("questionnaire update: %w", err)
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE questionnaire SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("questionnaire update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateAssessment(ctx context.Context, id int64, alerts []assessment.Alert, level assessment.RiskLevel) error {
	raw, err := r.encodeAlerts(alerts)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE questionnaire SET medical_alerts = $2, risk_level = $3, updated_at = NOW()
		WHERE id = $1`, id, raw, level)
	if err != nil {
		return fmt.Errorf("questionnaire update assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM questionnaire WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("questionnaire delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Questionnaire, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM questionnaire WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, `SELECT `+questionnaireCols+` FROM questionnaire
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("questionnaire list by patient: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) ListAfter(ctx context.Context, afterID int64, limit int) ([]*Questionnaire, error) {
	items, err := r.list(ctx, `SELECT `+questionnaireCols+` FROM questionnaire
		WHERE id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("questionnaire list after: %w", err)
	}
	return items, nil
}

func (r *repoPG) ListCompletedByRisk(ctx context.Context, level assessment.RiskLevel, limit, offset int) ([]*Questionnaire, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM questionnaire WHERE status = $1 AND risk_level = $2`,
		StatusCompleted, level).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, `SELECT `+questionnaireCols+` FROM questionnaire
		WHERE status = $1 AND risk_level = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		StatusCompleted, level, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("questionnaire list by risk: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) CountCompletedByRisk(ctx context.Context) (map[assessment.RiskLevel]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT risk_level, COUNT(*) FROM questionnaire
		WHERE status = $1 GROUP BY risk_level`, StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("questionnaire count by risk: %w", err)
	}
	defer rows.Close()

	counts := make(map[assessment.RiskLevel]int)
	for rows.Next() {
		var level assessment.RiskLevel
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Questionnaire, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Questionnaire
	for rows.Next() {
		q, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Questionnaire, error) {
	var q Questionnaire
	var medical, general, dental, alerts []byte
	if err := row.Scan(&q.ID, &q.PatientID, &q.Status, &medical, &general, &dental,
		&alerts, &q.RiskLevel, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	if err := r.revealSection(medical, &q.MedicalConditions); err != nil {
		return nil, err
	}
	if err := r.revealSection(general, &q.GeneralHealth); err != nil {
		return nil, err
	}
	if err := r.revealSection(dental, &q.DentalExam); err != nil {
		return nil, err
	}
	var err error
	if q.MedicalAlerts, err = r.decodeAlerts(alerts); err != nil {
		return nil, err
	}
	return &q, nil
}
