package dentist

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	items  map[int64]*Dentist
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Dentist)}
}

func (m *mockRepo) Create(_ context.Context, d *Dentist) error {
	for _, existing := range m.items {
		if existing.Email == d.Email {
			return ErrDuplicateEmail
		}
	}
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Dentist, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Dentist, error) {
	for _, d := range m.items {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Dentist, int, error) {
	var out []*Dentist
	for _, d := range m.items {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	d, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	d.PasswordHash = hash
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestService_Create(t *testing.T) {
	svc, repo := newTestService()

	d, err := svc.Create(context.Background(), "Dr. Ionescu", " Ionescu@Clinic.ro ", "s3cret-pass", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Email != "ionescu@clinic.ro" {
		t.Errorf("expected normalized email, got %q", d.Email)
	}
	if repo.items[d.ID].PasswordHash == "s3cret-pass" {
		t.Error("password must be stored hashed")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name, dname, email, password string
	}{
		{"missing name", "", "a@b.ro", "longenough"},
		{"bad email", "Dr", "not-an-email", "longenough"},
		{"short password", "Dr", "a@b.ro", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.dname, tt.email, tt.password, false); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Create(ctx, "Dr. Pop", "pop@clinic.ro", "correct-horse", true)

	d, err := svc.Authenticate(ctx, "POP@clinic.ro", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsAdmin {
		t.Error("expected admin flag")
	}

	if _, err := svc.Authenticate(ctx, "pop@clinic.ro", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@clinic.ro", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestService_Authenticate_UnknownEmailStillComparesHash(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Create(ctx, "Dr. Pop", "pop@clinic.ro", "correct-horse", false)

	var hashes [][]byte
	svc.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	if _, err := svc.Authenticate(ctx, "nobody@clinic.ro", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "pop@clinic.ro", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(hashes) != 2 {
		t.Fatalf("expected a bcrypt comparison on both failures, got %d", len(hashes))
	}
	cost, err := bcrypt.Cost(hashes[0])
	if err != nil || cost != svc.cost {
		t.Errorf("expected dummy hash at cost %d, got %d (%v)", svc.cost, cost, err)
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	d, _ := svc.Create(ctx, "Dr. Pop", "pop@clinic.ro", "first-password", false)

	if err := svc.ChangePassword(ctx, d.ID, "wrong", "second-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, d.ID, "first-password", "second-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "pop@clinic.ro", "second-password"); err != nil {
		t.Errorf("expected new password to work, got %v", err)
	}
}
