package questionnaire

import (
	"time"

	"github.com/clinic/clinic/internal/domain/assessment"
)

// Questionnaire statuses. Only completed questionnaires count in statistics.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusReviewed  = "reviewed"
)

var validStatuses = map[string]bool{
	StatusDraft: true, StatusCompleted: true, StatusReviewed: true,
}

// MedicalConditions is the "medicalConditions" section.
type MedicalConditions struct {
	HeartDisease        Answer `json:"heartDisease,omitempty"`
	Hypertension        Answer `json:"hypertension,omitempty"`
	CoagulationDisorder Answer `json:"coagulationDisorder,omitempty"`
	Epilepsy            Answer `json:"epilepsy,omitempty"`
	Diabetes            Answer `json:"diabetes,omitempty"`
	Hepatitis           Answer `json:"hepatitis,omitempty"`
	Cirrhosis           Answer `json:"cirrhosis,omitempty"`
	Migraines           Answer `json:"migraines,omitempty"`
	Asthma              Answer `json:"asthma,omitempty"`
	Tuberculosis        Answer `json:"tuberculosis,omitempty"`
	KidneyDisease       Answer `json:"kidneyDisease,omitempty"`
	ThyroidDisease      Answer `json:"thyroidDisease,omitempty"`
	RheumaticFever      Answer `json:"rheumaticFever,omitempty"`
	Osteoporosis        Answer `json:"osteoporosis,omitempty"`
	HIVAIDS             Answer `json:"hivAids,omitempty"`
	Cancer              Answer `json:"cancer,omitempty"`
	PsychiatricDisorder Answer `json:"psychiatricDisorder,omitempty"`
	Other               string `json:"other,omitempty"`
}

// GeneralHealth is the "generalHealth" section.
type GeneralHealth struct {
	Smoker             Answer `json:"smoker,omitempty"`
	HasAllergies       Answer `json:"hasAllergies,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	TakesMedication    Answer `json:"takesMedication,omitempty"`
	Medications        string `json:"medications,omitempty"`
	IsPregnant         Answer `json:"isPregnant,omitempty"`
	PregnancyMonth     string `json:"pregnancyMonth,omitempty"`
	IsNursing          Answer `json:"isNursing,omitempty"`
	UnderPhysicianCare Answer `json:"underPhysicianCare,omitempty"`
	PhysicianName      string `json:"physicianName,omitempty"`
}

// DentalExam is the "dentalExam" section.
type DentalExam struct {
	GumBleeding         Answer `json:"gumBleeding,omitempty"`
	ToothSensitivity    Answer `json:"toothSensitivity,omitempty"`
	OrthodonticProblems Answer `json:"orthodonticProblems,omitempty"`
	TeethGrinding       Answer `json:"teethGrinding,omitempty"`
	LastVisitDate       string `json:"lastVisitDate,omitempty"`
	AppearanceRating    string `json:"appearanceRating,omitempty"`
}

// Questionnaire maps to the questionnaire table. MedicalAlerts and RiskLevel
// are derived from the sections and never accepted from clients.
type Questionnaire struct {
	ID                int64                `db:"id" json:"id"`
	PatientID         int64                `db:"patient_id" json:"patient_id"`
	Status            string               `db:"status" json:"status"`
	MedicalConditions MedicalConditions    `db:"medical_conditions" json:"medicalConditions"`
	GeneralHealth     GeneralHealth        `db:"general_health" json:"generalHealth"`
	DentalExam        DentalExam           `db:"dental_exam" json:"dentalExam"`
	MedicalAlerts     []assessment.Alert   `db:"medical_alerts" json:"medical_alerts"`
	RiskLevel         assessment.RiskLevel `db:"risk_level" json:"risk_level"`
	CreatedAt         time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `db:"updated_at" json:"updated_at"`
}

// Answers adapts the questionnaire sections to the scoring input. Every
// yes/no factor uses the strict "DA" rule.
func (q *Questionnaire) Answers() assessment.Answers {
	mc, gh := q.MedicalConditions, q.GeneralHealth
	return assessment.Answers{
		HeartDisease:        mc.HeartDisease.IsYes() || mc.Hypertension.IsYes(),
		CoagulationDisorder: mc.CoagulationDisorder.IsYes(),
		Epilepsy:            mc.Epilepsy.IsYes(),
		Diabetes:            mc.Diabetes.IsYes(),
		Hepatitis:           mc.Hepatitis.IsYes() || mc.Cirrhosis.IsYes(),
		Allergy:             gh.HasAllergies.IsYes(),
		AllergyList:         gh.Allergies,
		Migraines:           mc.Migraines.IsYes(),
		Smoker:              gh.Smoker.IsYes(),
		Pregnant:            gh.IsPregnant.IsYes(),
		PregnancyMonth:      gh.PregnancyMonth,
		Medication:          gh.TakesMedication.IsYes(),
		MedicationList:      gh.Medications,
	}
}

// RiskChange records one row rewritten by a bulk recompute.
type RiskChange struct {
	QuestionnaireID int64                `json:"questionnaire_id"`
	PatientID       int64                `json:"patient_id"`
	From            assessment.RiskLevel `json:"from"`
	To              assessment.RiskLevel `json:"to"`
}

// RecomputeReport summarizes a bulk recompute.
type RecomputeReport struct {
	Scanned int          `json:"scanned"`
	Updated int          `json:"updated"`
	DryRun  bool         `json:"dry_run"`
	Changes []RiskChange `json:"changes"`
}

// Statistics counts completed questionnaires per risk level.
type Statistics struct {
	Total       int                          `json:"total"`
	ByRiskLevel map[assessment.RiskLevel]int `json:"by_risk_level"`
}

// SyncResult reports the outcome of the best-effort legacy table sync.
type SyncResult struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}
