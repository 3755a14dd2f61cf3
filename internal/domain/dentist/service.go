package dentist

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type Service struct {
	repo    Repository
	cost    int
	compare func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost, compare: bcrypt.CompareHashAndPassword}
}

// dummy returns a hash at the service cost, compared against on unknown
// emails so both login failures take the same time.
func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("clinic-unknown-account"), s.cost)
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds a dentist account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, name, email, password string, admin bool) (*Dentist, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d := &Dentist{Name: name, Email: email, PasswordHash: string(hash), IsAdmin: admin}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Dentist, error) {
	d, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		_ = s.compare(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.compare([]byte(d.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return d, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.compare([]byte(d.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func (s *Service) Get(ctx context.Context, id int64) (*Dentist, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Dentist, int, error) {
	return s.repo.List(ctx, limit, offset)
}
