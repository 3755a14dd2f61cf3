package patient

import (
	"time"

	"github.com/clinic/clinic/internal/domain/assessment"
)

// Patient maps to the patient table. Every string field except the ids is
// PII and is stored as a cipher token.
type Patient struct {
	ID                 int64      `db:"id" json:"id"`
	FirstName          string     `db:"first_name" json:"first_name"`
	LastName           string     `db:"last_name" json:"last_name"`
	CNP                string     `db:"cnp" json:"cnp"`
	BirthDate          *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Email              *string    `db:"email" json:"email,omitempty"`
	Phone              *string    `db:"phone" json:"phone,omitempty"`
	Address            *string    `db:"address" json:"address,omitempty"`
	RepresentativeName *string    `db:"representative_name" json:"representative_name,omitempty"`
	DentistID          *int64     `db:"dentist_id" json:"dentist_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	// From the latest submitted questionnaire; read-only.
	LatestQuestionnaireID *int64                `json:"latest_questionnaire_id,omitempty"`
	RiskLevel             *assessment.RiskLevel `json:"risk_level,omitempty"`
	MedicalAlerts         []assessment.Alert    `json:"medical_alerts,omitempty"`
}

// PIIFields implements hipaa.Record.
func (p *Patient) PIIFields() map[string]*string {
	return map[string]*string{
		"first_name":          &p.FirstName,
		"last_name":           &p.LastName,
		"cnp":                 &p.CNP,
		"email":               p.Email,
		"phone":               p.Phone,
		"address":             p.Address,
		"representative_name": p.RepresentativeName,
	}
}
