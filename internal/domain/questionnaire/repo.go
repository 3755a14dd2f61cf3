package questionnaire

import (
	"context"
	"errors"

	"github.com/clinic/clinic/internal/domain/assessment"
)

var (
	ErrNotFound        = errors.New("questionnaire not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrValidation      = errors.New("invalid questionnaire")
)

type Repository interface {
	Create(ctx context.Context, q *Questionnaire) error
	GetByID(ctx context.Context, id int64) (*Questionnaire, error)
	Update(ctx context.Context, q *Questionnaire) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateAssessment(ctx context.Context, id int64, alerts []assessment.Alert, level assessment.RiskLevel) error
	Delete(ctx context.Context, id int64) error

	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Questionnaire, int, error)
	// ListAfter returns up to limit questionnaires with id > afterID, ordered by id.
	ListAfter(ctx context.Context, afterID int64, limit int) ([]*Questionnaire, error)
	ListCompletedByRisk(ctx context.Context, level assessment.RiskLevel, limit, offset int) ([]*Questionnaire, int, error)
	CountCompletedByRisk(ctx context.Context) (map[assessment.RiskLevel]int, error)
}
