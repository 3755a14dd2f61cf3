package questionnaire

import "github.com/clinic/clinic/internal/domain/legacy"

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToSnapshot projects a saved questionnaire onto the legacy tables. Only
// "DA" maps to true.
func ToSnapshot(q *Questionnaire) *legacy.Snapshot {
	mc, gh, de := q.MedicalConditions, q.GeneralHealth, q.DentalExam
	qid := q.ID

	return &legacy.Snapshot{
		Disease: &legacy.DiseaseFlags{
			PatientID:           q.PatientID,
			QuestionnaireID:     &qid,
			HeartDisease:        mc.HeartDisease.IsYes(),
			Hypertension:        mc.Hypertension.IsYes(),
			CoagulationDisorder: mc.CoagulationDisorder.IsYes(),
			Epilepsy:            mc.Epilepsy.IsYes(),
			Diabetes:            mc.Diabetes.IsYes(),
			Hepatitis:           mc.Hepatitis.IsYes(),
			Cirrhosis:           mc.Cirrhosis.IsYes(),
			Migraines:           mc.Migraines.IsYes(),
			Asthma:              mc.Asthma.IsYes(),
			Tuberculosis:        mc.Tuberculosis.IsYes(),
			KidneyDisease:       mc.KidneyDisease.IsYes(),
			ThyroidDisease:      mc.ThyroidDisease.IsYes(),
			RheumaticFever:      mc.RheumaticFever.IsYes(),
			Osteoporosis:        mc.Osteoporosis.IsYes(),
			HIVAIDS:             mc.HIVAIDS.IsYes(),
			Cancer:              mc.Cancer.IsYes(),
			PsychiatricDisorder: mc.PsychiatricDisorder.IsYes(),
			Other:               optional(mc.Other),
		},
		Antecedents: &legacy.Antecedents{
			PatientID:          q.PatientID,
			QuestionnaireID:    &qid,
			Smoker:             gh.Smoker.IsYes(),
			HasAllergies:       gh.HasAllergies.IsYes(),
			Allergies:          optional(gh.Allergies),
			TakesMedication:    gh.TakesMedication.IsYes(),
			Medications:        optional(gh.Medications),
			Pregnant:           gh.IsPregnant.IsYes(),
			PregnancyMonth:     optional(gh.PregnancyMonth),
			Nursing:            gh.IsNursing.IsYes(),
			UnderPhysicianCare: gh.UnderPhysicianCare.IsYes(),
			PhysicianName:      optional(gh.PhysicianName),
		},
		Dental: &legacy.DentalRecord{
			PatientID:           q.PatientID,
			QuestionnaireID:     &qid,
			GumBleeding:         de.GumBleeding.IsYes(),
			ToothSensitivity:    de.ToothSensitivity.IsYes(),
			OrthodonticProblems: de.OrthodonticProblems.IsYes(),
			TeethGrinding:       de.TeethGrinding.IsYes(),
			LastVisitDate:       optional(de.LastVisitDate),
			AppearanceRating:    optional(de.AppearanceRating),
		},
	}
}
