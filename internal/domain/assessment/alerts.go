package assessment

import "fmt"

// AlertKind is the display severity of an alert.
type AlertKind string

const (
	KindInfo    AlertKind = "info"
	KindWarning AlertKind = "warning"
	KindDanger  AlertKind = "danger"
)

// Priority orders alerts for triage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Alert categories.
const (
	CategoryMedicalCondition = "medical_condition"
	CategoryAllergy          = "allergy"
	CategoryPregnancy        = "pregnancy"
	CategoryMedication       = "medication"
)

// Alert is one clinical warning shown to the dentist.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Message  string    `json:"message"`
	Priority Priority  `json:"priority"`
	Category string    `json:"category"`
}

const (
	msgDiabetes     = "DIABETES — caution with wound healing and infection"
	msgHeartDisease = "HEART DISEASE — consult cardiologist before anesthesia"
	msgCoagulation  = "COAGULATION DISORDER — bleeding risk"

	unknownPregnancyMonth = "unknown"
)

// GenerateAlerts evaluates the alert rules in their fixed order: diabetes,
// heart disease, coagulation, allergies, pregnancy, medication. The result is
// never nil so it serializes as an empty JSON array.
func GenerateAlerts(a Answers) []Alert {
	alerts := make([]Alert, 0, 6)

	if a.Diabetes {
		alerts = append(alerts, Alert{KindWarning, msgDiabetes, PriorityHigh, CategoryMedicalCondition})
	}
	if a.HeartDisease {
		alerts = append(alerts, Alert{KindDanger, msgHeartDisease, PriorityHigh, CategoryMedicalCondition})
	}
	if a.CoagulationDisorder {
		alerts = append(alerts, Alert{KindDanger, msgCoagulation, PriorityHigh, CategoryMedicalCondition})
	}
	if a.Allergy && a.AllergyList != "" {
		alerts = append(alerts, Alert{
			Kind:     KindWarning,
			Message:  fmt.Sprintf("ALLERGIES: %s", a.AllergyList),
			Priority: PriorityMedium,
			Category: CategoryAllergy,
		})
	}
	if a.Pregnant {
		month := a.PregnancyMonth
		if month == "" {
			month = unknownPregnancyMonth
		}
		alerts = append(alerts, Alert{
			Kind:     KindInfo,
			Message:  fmt.Sprintf("PREGNANCY — month %s", month),
			Priority: PriorityMedium,
			Category: CategoryPregnancy,
		})
	}
	if a.Medication && a.MedicationList != "" {
		alerts = append(alerts, Alert{
			Kind:     KindInfo,
			Message:  fmt.Sprintf("CURRENT MEDICATION: %s", a.MedicationList),
			Priority: PriorityLow,
			Category: CategoryMedication,
		})
	}

	return alerts
}

// QuotesPatientText reports whether the message embeds a list the patient
// typed in (allergies, medication).
func (a Alert) QuotesPatientText() bool {
	return a.Category == CategoryAllergy || a.Category == CategoryMedication
}

// MapPatientText returns a copy of alerts with fn applied to every message
// that quotes patient text. A nil slice stays nil.
func MapPatientText(alerts []Alert, fn func(string) string) []Alert {
	if alerts == nil {
		return nil
	}
	out := make([]Alert, len(alerts))
	for i, a := range alerts {
		if a.QuotesPatientText() {
			a.Message = fn(a.Message)
		}
		out[i] = a
	}
	return out
}

// Result bundles everything derived from one set of answers.
type Result struct {
	Score     int       `json:"score"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Alerts    []Alert   `json:"alerts"`
}

// Evaluate runs the alert generator and then the scoring engine.
func Evaluate(a Answers) Result {
	alerts := GenerateAlerts(a)
	score := Score(a)
	return Result{Score: score, RiskLevel: LevelForScore(score), Alerts: alerts}
}
