package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/utils"
)

// ExceedanceSeverity grades how far a value is over its threshold. A
// non-positive threshold has no defined percentage and is graded HIGH.
func ExceedanceSeverity(value, threshold float64) models.Severity {
	if threshold <= 0 {
		return models.SeverityHigh
	}

	percent := (value - threshold) / threshold * 100
	switch {
	case percent > 30:
		return models.SeverityHigh
	case percent > 15:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// AlertsFromLogs raises a ThresholdExceeded alert for every log that is
// flagged EXCEEDED or whose value is above its threshold. IDs are numbered
// from 1 within the batch; MergeAlerts renumbers them against the store.
func AlertsFromLogs(logs []models.OperationalLog) []models.Alert {
	alerts := []models.Alert{}

	for _, log := range logs {
		if log.Status != models.StatusExceeded && !log.Exceeded() {
			continue
		}

		facility := log.Facility
		metric := log.Metric
		alerts = append(alerts, models.Alert{
			AlertID:   utils.AlertID(len(alerts) + 1),
			Type:      models.AlertThresholdExceeded,
			Message:   ExceedanceMessage(log),
			Severity:  ExceedanceSeverity(log.Value, log.Threshold),
			Timestamp: log.Timestamp,
			Facility:  &facility,
			Metric:    &metric,
		})
	}

	return alerts
}

func ExceedanceMessage(log models.OperationalLog) string {
	return fmt.Sprintf("%s exceeded threshold at %s. Value: %s %s, Threshold: %s %s.",
		log.Metric, log.Facility,
		formatNumber(log.Value), log.Unit,
		formatNumber(log.Threshold), log.Unit,
	)
}

// MetricAverage is the historical mean of one metric across logs.
type MetricAverage struct {
	Metric    string
	Unit      string
	Mean      float64
	Threshold float64
	Samples   int
}

// HistoricalAverage averages every log of metric. The threshold and unit are
// taken from the most recent sample. ok is false when there are no samples.
func HistoricalAverage(logs []models.OperationalLog, metric string) (MetricAverage, bool) {
	avg := MetricAverage{Metric: metric}
	var latest time.Time
	sum := 0.0

	for _, log := range logs {
		if log.Metric != metric {
			continue
		}
		sum += log.Value
		avg.Samples++
		if avg.Samples == 1 || !log.Timestamp.Before(latest) {
			latest = log.Timestamp
			avg.Threshold = log.Threshold
			avg.Unit = log.Unit
		}
	}

	if avg.Samples == 0 {
		return avg, false
	}
	avg.Mean = sum / float64(avg.Samples)
	return avg, true
}

// TrendAlert returns a LOW TrendAnalysis alert when the historical mean is
// above percent% of the threshold, or nil.
func TrendAlert(avg MetricAverage, percent float64, now time.Time) *models.Alert {
	if avg.Samples == 0 || avg.Threshold <= 0 {
		return nil
	}
	if avg.Mean <= avg.Threshold*percent/100 {
		return nil
	}

	metric := avg.Metric
	return &models.Alert{
		AlertID:   utils.AlertID(1),
		Type:      models.AlertTrendAnalysis,
		Message:   fmt.Sprintf("%s (%.1f %s) is approaching threshold of %s %s", trendPrefix(avg.Metric), avg.Mean, avg.Unit, formatNumber(avg.Threshold), avg.Unit),
		Severity:  models.SeverityLow,
		Timestamp: now,
		Metric:    &metric,
	}
}

func trendPrefix(metric string) string {
	return "Historical average for " + metric
}

// MergeAlerts appends incoming alerts to existing, dropping any incoming
// alert whose metric already has an unresolved alert (in existing or earlier
// in incoming). Kept alerts are renumbered after the highest existing ID.
// Matching is a message prefix check.
func MergeAlerts(existing, incoming []models.Alert) (merged, added []models.Alert) {
	open := make([]string, 0, len(existing)+len(incoming))
	for _, a := range existing {
		if !a.Resolved {
			open = append(open, a.Message)
		}
	}

	next := nextAlertNumber(existing)
	added = []models.Alert{}

	for _, a := range incoming {
		if key, ok := dedupPrefix(a); ok && hasPrefix(open, key) {
			continue
		}

		a.AlertID = utils.AlertID(next)
		next++
		added = append(added, a)
		if !a.Resolved {
			open = append(open, a.Message)
		}
	}

	merged = make([]models.Alert, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)
	return merged, added
}

func dedupPrefix(a models.Alert) (string, bool) {
	if a.Metric == nil {
		return "", false
	}

	switch a.Type {
	case models.AlertThresholdExceeded:
		return *a.Metric + " exceeded", true
	case models.AlertTrendAnalysis:
		return trendPrefix(*a.Metric), true
	default:
		return "", false
	}
}

func hasPrefix(messages []string, prefix string) bool {
	for _, msg := range messages {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func nextAlertNumber(existing []models.Alert) int {
	highest := len(existing)
	for _, a := range existing {
		n, err := strconv.Atoi(strings.TrimPrefix(a.AlertID, "ALERT-"))
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
