package patient

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrDuplicateCNP = errors.New("a patient with this CNP already exists")
	ErrValidation   = errors.New("invalid patient")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByCNP(ctx context.Context, cnp string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListByDentist(ctx context.Context, dentistID int64, limit, offset int) ([]*Patient, int, error)
	AssignDentist(ctx context.Context, patientID int64, dentistID *int64) error
}
