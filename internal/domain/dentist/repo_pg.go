package dentist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/hipaa"
)

type repoPG struct {
	pool     *pgxpool.Pool
	boundary *hipaa.Boundary
	index    hipaa.BlindIndexer
}

func NewRepo(pool *pgxpool.Pool, b *hipaa.Boundary, idx hipaa.BlindIndexer) Repository {
	return &repoPG{pool: pool, boundary: b, index: idx}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const dentistCols = `id, name, email, password_hash, is_admin, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, d *Dentist) error {
	emailHash := r.index.BlindIndex(d.Email)

	r.boundary.ProtectRecord(d)
	defer r.boundary.RevealRecord(d)

	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dentist (name, email, email_hash, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		d.Name, d.Email, emailHash, d.PasswordHash, d.IsAdmin,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("dentist create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Dentist, error) {
	return r.getOne(ctx, `SELECT `+dentistCols+` FROM dentist WHERE id = $1`, id)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Dentist, error) {
	return r.getOne(ctx, `SELECT `+dentistCols+` FROM dentist WHERE email_hash = $1`, r.index.BlindIndex(email))
}

func (r *repoPG) getOne(ctx context.Context, sql string, arg interface{}) (*Dentist, error) {
	d, err := scanDentist(r.conn(ctx).QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("dentist get: %w", err)
	}
	r.boundary.RevealRecord(d)
	return d, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Dentist, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dentist`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+dentistCols+` FROM dentist ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("dentist list: %w", err)
	}
	defer rows.Close()

	var items []*Dentist
	for rows.Next() {
		d, err := scanDentist(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	hipaa.RevealRecords(r.boundary, items)
	return items, total, nil
}

func (r *repoPG) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE dentist SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("dentist update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDentist(row pgx.Row) (*Dentist, error) {
	var d Dentist
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.PasswordHash, &d.IsAdmin, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
