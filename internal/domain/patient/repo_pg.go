package patient

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

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type repoPG struct {
	pool     *pgxpool.Pool
	boundary *hipaa.Boundary
	index    hipaa.BlindIndexer
}

// NewRepo creates the patient repository. PII is encrypted through b and the
// CNP is additionally indexed with idx for uniqueness and lookup.
func NewRepo(pool *pgxpool.Pool, b *hipaa.Boundary, idx hipaa.BlindIndexer) Repository {
	return &repoPG{pool: pool, boundary: b, index: idx}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `p.id, p.first_name, p.last_name, p.cnp, p.birth_date, p.email, p.phone,
	p.address, p.representative_name, p.dentist_id, p.created_at, p.updated_at,
	lq.id, lq.risk_level, lq.medical_alerts`

// latestJoin attaches the most recent submitted questionnaire.
const latestJoin = `
	LEFT JOIN LATERAL (
		SELECT q.id, q.risk_level, q.medical_alerts FROM questionnaire q
		WHERE q.patient_id = p.id AND q.status IN ('completed', 'reviewed')
		ORDER BY q.created_at DESC, q.id DESC LIMIT 1
	) lq ON true`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	cnpHash := r.index.BlindIndex(p.CNP)

	// Encrypt PII before storage, then restore plaintext for the caller.
	r.boundary.ProtectRecord(p)
	defer r.boundary.RevealRecord(p)

	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (first_name, last_name, cnp, cnp_hash, birth_date, email, phone,
			address, representative_name, dentist_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, p.CNP, cnpHash, p.BirthDate, p.Email, p.Phone,
		p.Address, p.RepresentativeName, p.DentistID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapWriteError(err, "patient create")
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient p`+latestJoin+` WHERE p.id = $1`, id)
}

func (r *repoPG) GetByCNP(ctx context.Context, cnp string) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient p`+latestJoin+` WHERE p.cnp_hash = $1`,
		r.index.BlindIndex(cnp))
}

func (r *repoPG) getOne(ctx context.Context, sql string, arg interface{}) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patient get: %w", err)
	}
	r.reveal(p)
	return p, nil
}

// reveal decrypts the patient's PII and the patient text quoted in the
// latest questionnaire's alerts.
func (r *repoPG) reveal(p *Patient) {
	r.boundary.RevealRecord(p)
	p.MedicalAlerts = assessment.MapPatientText(p.MedicalAlerts, r.boundary.RevealValue)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	cnpHash := r.index.BlindIndex(p.CNP)

	r.boundary.ProtectRecord(p)
	defer r.boundary.RevealRecord(p)

	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET
			first_name = $2, last_name = $3, cnp = $4, cnp_hash = $5, birth_date = $6,
			email = $7, phone = $8, address = $9, representative_name = $10, dentist_id = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.CNP, cnpHash, p.BirthDate,
		p.Email, p.Phone, p.Address, p.RepresentativeName, p.DentistID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapWriteError(err, "patient update")
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patient delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	// Names are ciphertext, so newest first is the only meaningful order.
	items, err := r.list(ctx, `SELECT `+patientCols+` FROM patient p`+latestJoin+`
		ORDER BY p.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) ListByDentist(ctx context.Context, dentistID int64, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE dentist_id = $1`, dentistID).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, `SELECT `+patientCols+` FROM patient p`+latestJoin+`
		WHERE p.dentist_id = $1 ORDER BY p.id DESC LIMIT $2 OFFSET $3`, dentistID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list by dentist: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) AssignDentist(ctx context.Context, patientID int64, dentistID *int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE patient SET dentist_id = $2, updated_at = NOW() WHERE id = $1`,
		patientID, dentistID)
	if err != nil {
		return mapWriteError(err, "patient assign dentist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range items {
		r.reveal(p)
	}
	return items, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var level *string
	var alerts []byte
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.CNP, &p.BirthDate, &p.Email, &p.Phone,
		&p.Address, &p.RepresentativeName, &p.DentistID, &p.CreatedAt, &p.UpdatedAt,
		&p.LatestQuestionnaireID, &level, &alerts)
	if err != nil {
		return nil, err
	}
	if level != nil {
		lv := assessment.RiskLevel(*level)
		p.RiskLevel = &lv
	}
	if len(alerts) > 0 {
		if err := json.Unmarshal(alerts, &p.MedicalAlerts); err != nil {
			return nil, fmt.Errorf("decode alerts: %w", err)
		}
	}
	return &p, nil
}

func mapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateCNP
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: dentist does not exist", ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
