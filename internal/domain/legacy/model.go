// Package legacy owns the flat per-patient tables that predate the
// questionnaire JSON sections. Rows are insert-only projections written on
// every questionnaire create; the latest row per patient is the current one.
package legacy

import (
	"errors"
	"time"

	"github.com/clinic/clinic/internal/domain/assessment"
)

// ErrNotFound is returned when a patient has no legacy rows yet.
var ErrNotFound = errors.New("legacy record not found")

// DiseaseFlags maps to the disease_flags table.
type DiseaseFlags struct {
	ID                  int64     `db:"id" json:"id"`
	PatientID           int64     `db:"patient_id" json:"patient_id"`
	QuestionnaireID     *int64    `db:"questionnaire_id" json:"questionnaire_id,omitempty"`
	HeartDisease        bool      `db:"heart_disease" json:"heart_disease"`
	Hypertension        bool      `db:"hypertension" json:"hypertension"`
	CoagulationDisorder bool      `db:"coagulation_disorder" json:"coagulation_disorder"`
	Epilepsy            bool      `db:"epilepsy" json:"epilepsy"`
	Diabetes            bool      `db:"diabetes" json:"diabetes"`
	Hepatitis           bool      `db:"hepatitis" json:"hepatitis"`
	Cirrhosis           bool      `db:"cirrhosis" json:"cirrhosis"`
	Migraines           bool      `db:"migraines" json:"migraines"`
	Asthma              bool      `db:"asthma" json:"asthma"`
	Tuberculosis        bool      `db:"tuberculosis" json:"tuberculosis"`
	KidneyDisease       bool      `db:"kidney_disease" json:"kidney_disease"`
	ThyroidDisease      bool      `db:"thyroid_disease" json:"thyroid_disease"`
	RheumaticFever      bool      `db:"rheumatic_fever" json:"rheumatic_fever"`
	Osteoporosis        bool      `db:"osteoporosis" json:"osteoporosis"`
	HIVAIDS             bool      `db:"hiv_aids" json:"hiv_aids"`
	Cancer              bool      `db:"cancer" json:"cancer"`
	PsychiatricDisorder bool      `db:"psychiatric_disorder" json:"psychiatric_disorder"`
	Other               *string   `db:"other" json:"other,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// Antecedents maps to the antecedents table. Allergies and medications are
// PII and stored encrypted.
type Antecedents struct {
	ID                 int64     `db:"id" json:"id"`
	PatientID          int64     `db:"patient_id" json:"patient_id"`
	QuestionnaireID    *int64    `db:"questionnaire_id" json:"questionnaire_id,omitempty"`
	Smoker             bool      `db:"smoker" json:"smoker"`
	HasAllergies       bool      `db:"has_allergies" json:"has_allergies"`
	Allergies          *string   `db:"allergies" json:"allergies,omitempty"`
	TakesMedication    bool      `db:"takes_medication" json:"takes_medication"`
	Medications        *string   `db:"medications" json:"medications,omitempty"`
	Pregnant           bool      `db:"pregnant" json:"pregnant"`
	PregnancyMonth     *string   `db:"pregnancy_month" json:"pregnancy_month,omitempty"`
	Nursing            bool      `db:"nursing" json:"nursing"`
	UnderPhysicianCare bool      `db:"under_physician_care" json:"under_physician_care"`
	PhysicianName      *string   `db:"physician_name" json:"physician_name,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// PIIFields implements hipaa.Record.
func (a *Antecedents) PIIFields() map[string]*string {
	m := make(map[string]*string, 2)
	if a.Allergies != nil {
		m["allergies"] = a.Allergies
	}
	if a.Medications != nil {
		m["medications"] = a.Medications
	}
	return m
}

// DentalRecord maps to the dental_record table.
type DentalRecord struct {
	ID                  int64     `db:"id" json:"id"`
	PatientID           int64     `db:"patient_id" json:"patient_id"`
	QuestionnaireID     *int64    `db:"questionnaire_id" json:"questionnaire_id,omitempty"`
	GumBleeding         bool      `db:"gum_bleeding" json:"gum_bleeding"`
	ToothSensitivity    bool      `db:"tooth_sensitivity" json:"tooth_sensitivity"`
	OrthodonticProblems bool      `db:"orthodontic_problems" json:"orthodontic_problems"`
	TeethGrinding       bool      `db:"teeth_grinding" json:"teeth_grinding"`
	LastVisitDate       *string   `db:"last_visit_date" json:"last_visit_date,omitempty"`
	AppearanceRating    *string   `db:"appearance_rating" json:"appearance_rating,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// Snapshot is one projection of a questionnaire into the three tables.
type Snapshot struct {
	Disease     *DiseaseFlags `json:"disease_flags"`
	Antecedents *Antecedents  `json:"antecedents"`
	Dental      *DentalRecord `json:"dental_record"`
}

// Risk is the legacy-path assessment of a patient.
type Risk struct {
	PatientID int64 `json:"patient_id"`
	assessment.Result
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Answers adapts legacy rows to the scoring input. Pregnancy is true when
// the flag is set or pregnancy_month holds any value. Nil rows contribute
// nothing.
func Answers(d *DiseaseFlags, a *Antecedents) assessment.Answers {
	var out assessment.Answers
	if d != nil {
		out.HeartDisease = d.HeartDisease || d.Hypertension
		out.CoagulationDisorder = d.CoagulationDisorder
		out.Epilepsy = d.Epilepsy
		out.Diabetes = d.Diabetes
		out.Hepatitis = d.Hepatitis || d.Cirrhosis
		out.Migraines = d.Migraines
	}
	if a != nil {
		month := deref(a.PregnancyMonth)
		out.Smoker = a.Smoker
		out.Allergy = a.HasAllergies
		out.AllergyList = deref(a.Allergies)
		out.Pregnant = a.Pregnant || month != ""
		out.PregnancyMonth = month
		out.Medication = a.TakesMedication
		out.MedicationList = deref(a.Medications)
	}
	return out
}
