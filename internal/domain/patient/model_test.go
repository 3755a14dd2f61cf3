package patient

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/hipaa"
)

func TestPatient_BoundaryRoundTrip(t *testing.T) {
	cipher, err := hipaa.NewFieldCipher(hipaa.CipherConfig{Key: "patient-test-key"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := hipaa.NewBoundary(cipher)

	email := "ana@example.ro"
	p := &Patient{FirstName: "Ana", LastName: "Pop", CNP: "2900101410011", Email: &email}
	b.ProtectRecord(p)

	for name, v := range map[string]string{"first_name": p.FirstName, "last_name": p.LastName, "cnp": p.CNP, "email": *p.Email} {
		if !strings.Contains(v, ":") || v == "Ana" {
			t.Errorf("expected %s to be a cipher token, got %q", name, v)
		}
	}
	if p.Phone != nil {
		t.Error("nil optional fields must stay nil")
	}

	b.RevealRecord(p)
	if p.FirstName != "Ana" || p.LastName != "Pop" || p.CNP != "2900101410011" || *p.Email != email {
		t.Errorf("expected plaintext restored, got %+v", p)
	}
}
