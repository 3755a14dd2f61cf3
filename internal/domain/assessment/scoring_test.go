package assessment

import "testing"

func TestScore_NoFactors(t *testing.T) {
	if got := Score(Answers{}); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := ComputeRiskLevel(Answers{}); got != RiskMinimal {
		t.Errorf("expected minimal, got %s", got)
	}
}

func TestScore_Weights(t *testing.T) {
	tests := []struct {
		name string
		a    Answers
		want int
	}{
		{"heart disease", Answers{HeartDisease: true}, 3},
		{"coagulation", Answers{CoagulationDisorder: true}, 3},
		{"epilepsy", Answers{Epilepsy: true}, 3},
		{"diabetes", Answers{Diabetes: true}, 2},
		{"hepatitis", Answers{Hepatitis: true}, 2},
		{"allergy", Answers{Allergy: true}, 2},
		{"migraines", Answers{Migraines: true}, 1},
		{"smoker", Answers{Smoker: true}, 1},
		{"pregnant", Answers{Pregnant: true}, 1},
		{"free text alone scores nothing", Answers{AllergyList: "Latex", MedicationList: "Aspirin"}, 0},
		{"medication does not score", Answers{Medication: true, MedicationList: "Aspirin"}, 0},
		{"everything", Answers{
			HeartDisease: true, CoagulationDisorder: true, Epilepsy: true,
			Diabetes: true, Hepatitis: true, Allergy: true,
			Migraines: true, Smoker: true, Pregnant: true,
		}, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.a); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelForScore_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskMinimal},
		{1, RiskMinimal},
		{2, RiskLow},
		{3, RiskLow},
		{4, RiskMedium},
		{5, RiskMedium},
		{6, RiskHigh},
		{18, RiskHigh},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestComputeRiskLevel_ExactBoundaries(t *testing.T) {
	tests := []struct {
		name string
		a    Answers
		want RiskLevel
	}{
		{"exactly 6", Answers{HeartDisease: true, CoagulationDisorder: true}, RiskHigh},
		{"exactly 4", Answers{Diabetes: true, Allergy: true}, RiskMedium},
		{"exactly 2", Answers{Diabetes: true}, RiskLow},
		{"exactly 1", Answers{Smoker: true}, RiskMinimal},
		{"exactly 5", Answers{Epilepsy: true, Smoker: true, Migraines: true}, RiskMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRiskLevel(tt.a); got != tt.want {
				t.Errorf("ComputeRiskLevel() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRiskLevel_RankAndValid(t *testing.T) {
	for i, l := range Levels {
		if l.Rank() != i {
			t.Errorf("%s: expected rank %d, got %d", l, i, l.Rank())
		}
		if !l.Valid() {
			t.Errorf("%s should be valid", l)
		}
	}
	if RiskLevel("critical").Valid() {
		t.Error("unknown level must be invalid")
	}
	if RiskLevel("").Rank() != -1 {
		t.Error("unknown level must rank -1")
	}
}
