package legacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/hipaa"
)

type repoPG struct {
	pool     *pgxpool.Pool
	boundary *hipaa.Boundary
}

// NewRepo creates the legacy repository. Antecedents PII passes through b
// on the way in and out.
func NewRepo(pool *pgxpool.Pool, b *hipaa.Boundary) Repository {
	return &repoPG{pool: pool, boundary: b}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const diseaseCols = `id, patient_id, questionnaire_id, heart_disease, hypertension, coagulation_disorder,
	epilepsy, diabetes, hepatitis, cirrhosis, migraines, asthma, tuberculosis, kidney_disease,
	thyroid_disease, rheumatic_fever, osteoporosis, hiv_aids, cancer, psychiatric_disorder, other, created_at`

func (r *repoPG) InsertDiseaseFlags(ctx context.Context, d *DiseaseFlags) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO disease_flags (
			patient_id, questionnaire_id, heart_disease, hypertension, coagulation_disorder,
			epilepsy, diabetes, hepatitis, cirrhosis, migraines, asthma, tuberculosis, kidney_disease,
			thyroid_disease, rheumatic_fever, osteoporosis, hiv_aids, cancer, psychiatric_disorder, other
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id, created_at`,
		d.PatientID, d.QuestionnaireID, d.HeartDisease, d.Hypertension, d.CoagulationDisorder,
		d.Epilepsy, d.Diabetes, d.Hepatitis, d.Cirrhosis, d.Migraines, d.Asthma, d.Tuberculosis, d.KidneyDisease,
		d.ThyroidDisease, d.RheumaticFever, d.Osteoporosis, d.HIVAIDS, d.Cancer, d.PsychiatricDisorder, d.Other,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert disease flags: %w", err)
	}
	return nil
}

func (r *repoPG) LatestDiseaseFlags(ctx context.Context, patientID int64) (*DiseaseFlags, error) {
	var d DiseaseFlags
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+diseaseCols+` FROM disease_flags
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID).Scan(
		&d.ID, &d.PatientID, &d.QuestionnaireID, &d.HeartDisease, &d.Hypertension, &d.CoagulationDisorder,
		&d.Epilepsy, &d.Diabetes, &d.Hepatitis, &d.Cirrhosis, &d.Migraines, &d.Asthma, &d.Tuberculosis, &d.KidneyDisease,
		&d.ThyroidDisease, &d.RheumaticFever, &d.Osteoporosis, &d.HIVAIDS, &d.Cancer, &d.PsychiatricDisorder, &d.Other,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "disease flags")
	}
	return &d, nil
}

const antecedentCols = `id, patient_id, questionnaire_id, smoker, has_allergies, allergies,
	takes_medication, medications, pregnant, pregnancy_month, nursing, under_physician_care,
	physician_name, created_at`

func (r *repoPG) InsertAntecedents(ctx context.Context, a *Antecedents) error {
	// Encrypt PII before storage, then restore plaintext for the caller.
	r.boundary.ProtectRecord(a)
	defer r.boundary.RevealRecord(a)

	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO antecedents (
			patient_id, questionnaire_id, smoker, has_allergies, allergies,
			takes_medication, medications, pregnant, pregnancy_month, nursing,
			under_physician_care, physician_name
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at`,
		a.PatientID, a.QuestionnaireID, a.Smoker, a.HasAllergies, a.Allergies,
		a.TakesMedication, a.Medications, a.Pregnant, a.PregnancyMonth, a.Nursing,
		a.UnderPhysicianCare, a.PhysicianName,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert antecedents: %w", err)
	}
	return nil
}

func (r *repoPG) LatestAntecedents(ctx context.Context, patientID int64) (*Antecedents, error) {
	var a Antecedents
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+antecedentCols+` FROM antecedents
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID).Scan(
		&a.ID, &a.PatientID, &a.QuestionnaireID, &a.Smoker, &a.HasAllergies, &a.Allergies,
		&a.TakesMedication, &a.Medications, &a.Pregnant, &a.PregnancyMonth, &a.Nursing,
		&a.UnderPhysicianCare, &a.PhysicianName, &a.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "antecedents")
	}
	r.boundary.RevealRecord(&a)
	return &a, nil
}

const dentalCols = `id, patient_id, questionnaire_id, gum_bleeding, tooth_sensitivity,
	orthodontic_problems, teeth_grinding, last_visit_date, appearance_rating, created_at`

func (r *repoPG) InsertDentalRecord(ctx context.Context, d *DentalRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dental_record (
			patient_id, questionnaire_id, gum_bleeding, tooth_sensitivity,
			orthodontic_problems, teeth_grinding, last_visit_date, appearance_rating
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`,
		d.PatientID, d.QuestionnaireID, d.GumBleeding, d.ToothSensitivity,
		d.OrthodonticProblems, d.TeethGrinding, d.LastVisitDate, d.AppearanceRating,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dental record: %w", err)
	}
	return nil
}

func (r *repoPG) LatestDentalRecord(ctx context.Context, patientID int64) (*DentalRecord, error) {
	var d DentalRecord
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+dentalCols+` FROM dental_record
		WHERE patient_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, patientID).Scan(
		&d.ID, &d.PatientID, &d.QuestionnaireID, &d.GumBleeding, &d.ToothSensitivity,
		&d.OrthodonticProblems, &d.TeethGrinding, &d.LastVisitDate, &d.AppearanceRating, &d.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "dental record")
	}
	return &d, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("select %s: %w", what, err)
}
