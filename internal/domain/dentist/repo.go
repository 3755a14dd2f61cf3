package dentist

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("dentist not found")
	ErrDuplicateEmail     = errors.New("a dentist with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("invalid dentist")
)

type Repository interface {
	Create(ctx context.Context, d *Dentist) error
	GetByID(ctx context.Context, id int64) (*Dentist, error)
	GetByEmail(ctx context.Context, email string) (*Dentist, error)
	List(ctx context.Context, limit, offset int) ([]*Dentist, int, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}
