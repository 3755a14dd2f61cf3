package legacy

import "context"

type Repository interface {
	InsertDiseaseFlags(ctx context.Context, d *DiseaseFlags) error
	InsertAntecedents(ctx context.Context, a *Antecedents) error
	InsertDentalRecord(ctx context.Context, r *DentalRecord) error

	LatestDiseaseFlags(ctx context.Context, patientID int64) (*DiseaseFlags, error)
	LatestAntecedents(ctx context.Context, patientID int64) (*Antecedents, error)
	LatestDentalRecord(ctx context.Context, patientID int64) (*DentalRecord, error)
}
