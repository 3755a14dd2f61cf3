package questionnaire

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/assessment"
	"github.com/clinic/clinic/internal/domain/legacy"
)

const recomputePageSize = 200

// LegacyWriter persists the legacy projection of a questionnaire.
// *legacy.Service implements it.
type LegacyWriter interface {
	InsertSnapshot(ctx context.Context, snap *legacy.Snapshot) error
}

type Service struct {
	repo   Repository
	legacy LegacyWriter
	logger zerolog.Logger
}

// NewService wires the orchestrator. A nil LegacyWriter disables the legacy
// sync.
func NewService(repo Repository, lw LegacyWriter, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		legacy: lw,
		logger: logger.With().Str("component", "questionnaire").Logger(),
	}
}

// Assess derives alerts and risk level from q's answers and stores them on
// q, replacing anything a client may have sent.
func (s *Service) Assess(q *Questionnaire) assessment.Result {
	res := assessment.Evaluate(q.Answers())
	q.MedicalAlerts = res.Alerts
	q.RiskLevel = res.RiskLevel
	return res
}

func validate(q *Questionnaire) error {
	if q.PatientID <= 0 {
		return fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if !validStatuses[q.Status] {
		return fmt.Errorf("%w: status must be draft, completed or reviewed", ErrValidation)
	}
	return nil
}

// Create assesses and stores q, then projects it onto the legacy tables. A
// legacy failure is logged and reported in the SyncResult; q stays saved.
func (s *Service) Create(ctx context.Context, q *Questionnaire) (SyncResult, error) {
	if q.Status == "" {
		q.Status = StatusCompleted
	}
	if err := validate(q); err != nil {
		return SyncResult{}, err
	}

	s.Assess(q)
	if err := s.repo.Create(ctx, q); err != nil {
		return SyncResult{}, err
	}

	return s.syncLegacy(ctx, q), nil
}

func (s *Service) syncLegacy(ctx context.Context, q *Questionnaire) SyncResult {
	if s.legacy == nil {
		return SyncResult{}
	}
	if err := s.legacy.InsertSnapshot(ctx, ToSnapshot(q)); err != nil {
		s.logger.Warn().Err(err).
			Int64("questionnaire_id", q.ID).
			Int64("patient_id", q.PatientID).
			Msg("legacy table sync failed")
		return SyncResult{Attempted: true, Error: err.Error()}
	}
	return SyncResult{Attempted: true, OK: true}
}

func (s *Service) Get(ctx context.Context, id int64) (*Questionnaire, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the sections of an existing questionnaire and reassesses
// it. The owning patient cannot change.
func (s *Service) Update(ctx context.Context, q *Questionnaire) error {
	existing, err := s.repo.GetByID(ctx, q.ID)
	if err != nil {
		return err
	}
	q.PatientID = existing.PatientID
	q.CreatedAt = existing.CreatedAt
	if q.Status == "" {
		q.Status = existing.Status
	}
	if err := validate(q); err != nil {
		return err
	}

	s.Assess(q)
	return s.repo.Update(ctx, q)
}

func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Reassess recomputes one stored questionnaire and persists the result.
func (s *Service) Reassess(ctx context.Context, id int64) (*Questionnaire, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Assess(q)
	if err := s.repo.UpdateAssessment(ctx, q.ID, q.MedicalAlerts, q.RiskLevel); err != nil {
		return nil, err
	}
	return q, nil
}

// RecomputeAll reassesses every stored questionnaire and rewrites the rows
// whose risk level changed. With dryRun nothing is written.
func (s *Service) RecomputeAll(ctx context.Context, dryRun bool) (*RecomputeReport, error) {
	report := &RecomputeReport{DryRun: dryRun, Changes: []RiskChange{}}

	var after int64
	for {
		page, err := s.repo.ListAfter(ctx, after, recomputePageSize)
		if err != nil {
			return report, err
		}
		if len(page) == 0 {
			break
		}

		for _, q := range page {
			report.Scanned++
			after = q.ID

			prev := q.RiskLevel
			s.Assess(q)
			if q.RiskLevel == prev {
				continue
			}

			report.Changes = append(report.Changes, RiskChange{
				QuestionnaireID: q.ID,
				PatientID:       q.PatientID,
				From:            prev,
				To:              q.RiskLevel,
			})
			if dryRun {
				continue
			}
			if err := s.repo.UpdateAssessment(ctx, q.ID, q.MedicalAlerts, q.RiskLevel); err != nil {
				return report, fmt.Errorf("recompute questionnaire %d: %w", q.ID, err)
			}
			report.Updated++
		}

		if len(page) < recomputePageSize {
			break
		}
	}

	s.logger.Info().
		Int("scanned", report.Scanned).
		Int("changed", len(report.Changes)).
		Int("updated", report.Updated).
		Bool("dry_run", dryRun).
		Msg("risk recompute finished")
	return report, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Questionnaire, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// HighRisk lists completed questionnaires in the high bucket.
func (s *Service) HighRisk(ctx context.Context, limit, offset int) ([]*Questionnaire, int, error) {
	return s.repo.ListCompletedByRisk(ctx, assessment.RiskHigh, limit, offset)
}

// Statistics counts completed questionnaires per risk level. Every level is
// present in the result.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	counts, err := s.repo.CountCompletedByRisk(ctx)
	if err != nil {
		return nil, err
	}
	st := &Statistics{ByRiskLevel: make(map[assessment.RiskLevel]int, len(assessment.Levels))}
	for _, lv := range assessment.Levels {
		st.ByRiskLevel[lv] = counts[lv]
		st.Total += counts[lv]
	}
	return st, nil
}
