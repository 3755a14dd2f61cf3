package assessment

// RiskLevel is one of four ordered buckets.
type RiskLevel string

const (
	RiskMinimal RiskLevel = "minimal"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
)

// Levels lists the buckets from least to most severe.
var Levels = []RiskLevel{RiskMinimal, RiskLow, RiskMedium, RiskHigh}

// Valid reports whether l is one of the four known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskMinimal, RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Rank orders levels: minimal 0 through high 3; unknown levels rank -1.
func (l RiskLevel) Rank() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// Point weights per risk factor.
const (
	WeightHeartDisease = 3
	WeightCoagulation  = 3
	WeightEpilepsy     = 3
	WeightDiabetes     = 2
	WeightHepatitis    = 2
	WeightAllergy      = 2
	WeightMigraines    = 1
	WeightSmoker       = 1
	WeightPregnancy    = 1
)

// Bucket lower bounds.
const (
	thresholdHigh   = 6
	thresholdMedium = 4
	thresholdLow    = 2
)

// Score sums the weights of every factor present.
func Score(a Answers) int {
	score := 0
	add := func(present bool, points int) {
		if present {
			score += points
		}
	}
	add(a.HeartDisease, WeightHeartDisease)
	add(a.CoagulationDisorder, WeightCoagulation)
	add(a.Epilepsy, WeightEpilepsy)
	add(a.Diabetes, WeightDiabetes)
	add(a.Hepatitis, WeightHepatitis)
	add(a.Allergy, WeightAllergy)
	add(a.Migraines, WeightMigraines)
	add(a.Smoker, WeightSmoker)
	add(a.Pregnant, WeightPregnancy)
	return score
}

// LevelForScore maps a score onto [6,inf) high, [4,6) medium, [2,4) low,
// below 2 minimal.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= thresholdHigh:
		return RiskHigh
	case score >= thresholdMedium:
		return RiskMedium
	case score >= thresholdLow:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// ComputeRiskLevel is LevelForScore(Score(a)).
func ComputeRiskLevel(a Answers) RiskLevel {
	return LevelForScore(Score(a))
}
