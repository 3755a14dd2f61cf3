// Package assessment turns medical questionnaire answers into a risk level
// and an ordered list of clinical alerts. It is pure: no I/O, no shared
// state. Data sources convert their own representation into Answers.
package assessment

// Answers is the common input of the scoring engine and the alert generator.
// A false value covers both "NU" and an unanswered question.
type Answers struct {
	HeartDisease        bool
	CoagulationDisorder bool
	Epilepsy            bool
	Diabetes            bool
	Hepatitis           bool
	Allergy             bool
	AllergyList         string
	Migraines           bool
	Smoker              bool
	Pregnant            bool
	PregnancyMonth      string
	Medication          bool
	MedicationList      string
}
