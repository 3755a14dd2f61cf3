package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/assessment"
	"github.com/clinic/clinic/internal/platform/db"
)

// ReadOptions bounds the read-after-write poll in RiskForPatient.
type ReadOptions struct {
	Retries  int
	Interval time.Duration
}

type Service struct {
	repo   Repository
	runTx  db.TxRunner
	read   ReadOptions
	logger zerolog.Logger
}

func NewService(repo Repository, runTx db.TxRunner, read ReadOptions, logger zerolog.Logger) *Service {
	if read.Retries < 1 {
		read.Retries = 1
	}
	return &Service{
		repo:   repo,
		runTx:  runTx,
		read:   read,
		logger: logger.With().Str("component", "legacy").Logger(),
	}
}

// InsertSnapshot writes the non-nil parts of snap in one transaction.
func (s *Service) InsertSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		if snap.Disease != nil {
			if err := s.repo.InsertDiseaseFlags(ctx, snap.Disease); err != nil {
				return err
			}
		}
		if snap.Antecedents != nil {
			if err := s.repo.InsertAntecedents(ctx, snap.Antecedents); err != nil {
				return err
			}
		}
		if snap.Dental != nil {
			if err := s.repo.InsertDentalRecord(ctx, snap.Dental); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot returns the latest row of each table for a patient. Missing
// tables stay nil; ErrNotFound is returned only when all three are empty.
func (s *Service) Snapshot(ctx context.Context, patientID int64) (*Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Disease, err = s.repo.LatestDiseaseFlags(ctx, patientID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.Antecedents, err = s.repo.LatestAntecedents(ctx, patientID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.Dental, err = s.repo.LatestDentalRecord(ctx, patientID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.Disease == nil && snap.Antecedents == nil && snap.Dental == nil {
		return nil, ErrNotFound
	}
	return &snap, nil
}

// RiskForPatient scores the patient from the legacy tables. Rows written by
// a concurrent questionnaire create may not be visible yet, so the read is
// retried while both tables are empty.
func (s *Service) RiskForPatient(ctx context.Context, patientID int64) (*Risk, error) {
	var flags *DiseaseFlags
	var ante *Antecedents

	err := AwaitVisible(ctx, s.read, func(ctx context.Context) error {
		var err error
		flags, err = s.repo.LatestDiseaseFlags(ctx, patientID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		ante, err = s.repo.LatestAntecedents(ctx, patientID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if flags == nil && ante == nil {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Risk{PatientID: patientID, Result: assessment.Evaluate(Answers(flags, ante))}, nil
}

// AwaitVisible calls fn until it returns something other than ErrNotFound,
// at most opts.Retries times, waiting opts.Interval between attempts.
func AwaitVisible(ctx context.Context, opts ReadOptions, fn func(ctx context.Context) error) error {
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); !errors.Is(err, ErrNotFound) {
			return err
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
