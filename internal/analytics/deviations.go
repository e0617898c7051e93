package analytics

import (
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

// DetectDeviations returns one Deviation per log whose value is above its
// threshold, in input order. Logs with a non-positive threshold have no
// defined percentage and are skipped.
func DetectDeviations(logs []models.OperationalLog) []models.Deviation {
	deviations := []models.Deviation{}

	for _, log := range logs {
		if !log.Exceeded() {
			continue
		}
		if log.Threshold <= 0 {
			logger.Debug("Skipping deviation with non-positive threshold",
				zap.String("log_id", log.ID),
				zap.String("metric", log.Metric),
				zap.Float64("threshold", log.Threshold),
			)
			continue
		}

		delta := log.Value - log.Threshold
		deviations = append(deviations, models.Deviation{
			Metric:     log.Metric,
			Value:      log.Value,
			Threshold:  log.Threshold,
			Unit:       log.Unit,
			Deviation:  delta,
			Percentage: delta / log.Threshold * 100,
			Timestamp:  log.Timestamp,
			Facility:   log.Facility,
		})
	}

	return deviations
}

// SafetyMetrics summarizes threshold compliance across all logs.
func SafetyMetrics(logs []models.OperationalLog) models.SafetyMetrics {
	total := len(logs)
	if total == 0 {
		return models.SafetyMetrics{ComplianceRate: 100}
	}

	exceeded := 0
	deviationSum := 0.0
	for _, log := range logs {
		if log.Exceeded() {
			exceeded++
			deviationSum += log.Value - log.Threshold
		}
	}

	return models.SafetyMetrics{
		TotalMetricsTracked:    total,
		ThresholdExceededCount: exceeded,
		ComplianceRate:         float64(total-exceeded) / float64(total) * 100,
		AverageDeviation:       deviationSum / float64(total),
	}
}
