package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinic/clinic/internal/platform/cnp"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// normalize trims input and fills the birth date from the CNP when the
// client did not send one.
func normalize(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.CNP = strings.TrimSpace(p.CNP)

	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrValidation)
	}
	if err := cnp.Validate(p.CNP); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if p.BirthDate == nil {
		bd, err := cnp.BirthDate(p.CNP)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		p.BirthDate = &bd
	}
	return nil
}

// Register creates a patient from a self-registration form.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := normalize(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByCNP looks a returning patient up by CNP.
func (s *Service) FindByCNP(ctx context.Context, code string) (*Patient, error) {
	code = strings.TrimSpace(code)
	if err := cnp.Validate(code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.repo.GetByCNP(ctx, code)
}

// Update rewrites the patient's details. The dentist assignment is kept;
// it only changes through AssignDentist.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := normalize(p); err != nil {
		return err
	}
	p.DentistID = existing.DentistID
	p.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByDentist(ctx context.Context, dentistID int64, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByDentist(ctx, dentistID, limit, offset)
}

// AssignDentist sets or clears (nil) the patient's dentist.
func (s *Service) AssignDentist(ctx context.Context, patientID int64, dentistID *int64) error {
	if dentistID != nil && *dentistID <= 0 {
		return fmt.Errorf("%w: dentist_id must be positive", ErrValidation)
	}
	return s.repo.AssignDentist(ctx, patientID, dentistID)
}
