package analytics

import (
	"fmt"
	"math"

	"github.com/zaintech991/ReguLens/internal/storage/models"
)

const MaxFacilityRisks = 6

// FacilityLabels maps document categories onto the plant that owns them.
// Keys not listed are shown as-is.
var FacilityLabels = map[string]string{
	"Environmental": "Plant A - North",
	"Safety":        "Plant A - South",
	"Data Privacy":  "Plant B - Main",
	"Financial":     "Plant B - East",
	"Quality":       "Plant C - West",
	"Health":        "Plant C - Core",
}

type riskBucket struct {
	key         string
	violations  int
	documents   int
	totalLogs   int
	exceedances int
}

func (b *riskBucket) risk() int {
	violationScore := math.Min(100, float64(b.violations)/math.Max(1, float64(b.documents))*20)

	exceedanceScore := 0.0
	if b.totalLogs > 0 {
		exceedanceScore = math.Min(100, float64(b.exceedances)/float64(b.totalLogs)*100)
	}

	return int(math.Floor(violationScore*0.6 + exceedanceScore*0.4))
}

// FacilityRisks scores category buckets (from analyses) and facility buckets
// (from logs) in one keyspace, keeping the first MaxFacilityRisks keys in
// the order they were first seen.
func FacilityRisks(summaries []models.AnalysisSummary, logs []models.OperationalLog) []models.FacilityRisk {
	var order []*riskBucket
	index := make(map[string]*riskBucket)

	bucket := func(key string) *riskBucket {
		if b, ok := index[key]; ok {
			return b
		}
		b := &riskBucket{key: key}
		index[key] = b
		order = append(order, b)
		return b
	}

	for _, s := range summaries {
		b := bucket(s.Category)
		b.violations += s.InconsistenciesCount
		b.documents++
	}

	for _, log := range logs {
		b := bucket(log.Facility)
		b.totalLogs++
		if log.Exceeded() {
			b.exceedances++
		}
	}

	if len(order) > MaxFacilityRisks {
		order = order[:MaxFacilityRisks]
	}

	risks := make([]models.FacilityRisk, 0, len(order))
	for i, b := range order {
		label := b.key
		if mapped, ok := FacilityLabels[b.key]; ok {
			label = mapped
		}
		risks = append(risks, models.FacilityRisk{
			ID:    fmt.Sprintf("F%d", i+1),
			Label: label,
			Risk:  b.risk(),
		})
	}
	return risks
}
