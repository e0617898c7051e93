package analysis

import (
	"math"

	"github.com/zaintech991/ReguLens/internal/storage/models"
)

// ComplianceScore is the heuristic 0-100 adherence estimate for a document.
// Downstream aggregates depend on the exact arithmetic here.
func ComplianceScore(text string, inconsistencies, rules []string) float64 {
	score := 90.0
	score -= 8.0 * float64(len(inconsistencies))
	score += math.Min(2.0*float64(len(rules)), 10.0)
	score += math.Min(float64(len(text))/150, 5.0)
	if len(rules) == 0 {
		score -= 15.0
	}

	score = math.Max(0, math.Min(100, score))
	return Round2(score)
}

// RiskLevel classifies a score. The HIGH check must run first.
func RiskLevel(score float64, inconsistencies int) models.RiskLevel {
	switch {
	case score < 50 || inconsistencies > 3:
		return models.RiskHigh
	case score < 75 || inconsistencies > 1:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
