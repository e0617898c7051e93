package analytics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/zaintech991/ReguLens/internal/analytics"
	"github.com/zaintech991/ReguLens/internal/storage/models"
)

var now = time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)

func logRecord(facility, metric string, value, threshold float64) models.OperationalLog {
	l := models.OperationalLog{
		ID:        fmt.Sprintf("LOG-%s-%v", metric, value),
		Facility:  facility,
		Metric:    metric,
		Value:     value,
		Unit:      "ppm",
		Threshold: threshold,
		Timestamp: now.Add(-time.Hour),
	}
	l.Status = l.DeriveStatus()
	return l
}

func TestDetectDeviations(t *testing.T) {
	logs := []models.OperationalLog{
		logRecord("Plant A", "Air Emissions", 27, 20),
		logRecord("Plant B", "Air Emissions", 20, 20),
		logRecord("Plant B", "Pressure", 50, 65),
		logRecord("Plant C", "Broken Sensor", 3, 0),
		logRecord("Plant C", "Vibration", 11, 10),
	}

	got := analytics.DetectDeviations(logs)
	gt.Array(t, got).Length(2)

	gt.Value(t, got[0].Metric).Equal("Air Emissions")
	gt.Value(t, got[0].Facility).Equal("Plant A")
	gt.Value(t, got[0].Deviation).Equal(7.0)
	gt.Value(t, got[0].Percentage).Equal(35.0)
	gt.Bool(t, got[0].Timestamp.Equal(logs[0].Timestamp)).True()

	gt.Value(t, got[1].Metric).Equal("Vibration")
	gt.Value(t, got[1].Deviation).Equal(1.0)
}

func TestDetectDeviations_Empty(t *testing.T) {
	got := analytics.DetectDeviations(nil)
	gt.Bool(t, got != nil).True()
	gt.Array(t, got).Length(0)
}

func TestSafetyMetrics(t *testing.T) {
	t.Run("no logs", func(t *testing.T) {
		got := analytics.SafetyMetrics(nil)
		gt.Value(t, got).Equal(models.SafetyMetrics{ComplianceRate: 100})
	})

	t.Run("mixed", func(t *testing.T) {
		got := analytics.SafetyMetrics([]models.OperationalLog{
			logRecord("Plant A", "Air Emissions", 27, 20),
			logRecord("Plant A", "Air Emissions", 10, 20),
		})
		gt.Value(t, got.TotalMetricsTracked).Equal(2)
		gt.Value(t, got.ThresholdExceededCount).Equal(1)
		gt.Value(t, got.ComplianceRate).Equal(50.0)
		gt.Value(t, got.AverageDeviation).Equal(3.5)
	})
}

func summary(id, category, published string, score float64, issues int) models.AnalysisSummary {
	return models.AnalysisSummary{
		DocumentID:           id,
		Category:             category,
		ComplianceScore:      score,
		InconsistenciesCount: issues,
		PublishedAt:          published,
	}
}

func TestComputeTrends(t *testing.T) {
	summaries := []models.AnalysisSummary{
		summary("DOC-1", "Environmental", "2024-04-10", 80, 1),
		summary("DOC-2", "Safety", "2024-04-10", 90, 3),
		summary("DOC-3", "Safety", "2024-01-01", 10, 9),
	}

	got := analytics.ComputeTrends(summaries, 30, now)
	gt.Array(t, got.Trends).Length(1)
	gt.Value(t, got.Trends[0]).Equal(models.TrendPoint{
		Date:                 "2024-04-10",
		CompliancePercentage: 85.0,
		Violations:           4,
		Inspections:          2,
	})
	gt.Value(t, got.ViolationsByCategory).Equal(map[string]int{"Environmental": 1, "Safety": 3})
	gt.Value(t, got.TotalViolations).Equal(4)
	gt.Value(t, got.AverageCompliance).Equal(85.0)
}

func TestComputeTrends_MeanOfMeans(t *testing.T) {
	summaries := []models.AnalysisSummary{
		summary("DOC-1", "Safety", "2024-04-12", 80, 0),
		summary("DOC-2", "Safety", "2024-04-12", 90, 0),
		summary("DOC-3", "Safety", "2024-04-01", 50, 2),
	}

	got := analytics.ComputeTrends(summaries, 30, now)
	gt.Array(t, got.Trends).Length(2)
	gt.Value(t, got.Trends[0].Date).Equal("2024-04-01")
	gt.Value(t, got.Trends[1].Date).Equal("2024-04-12")
	gt.Value(t, got.AverageCompliance).Equal(67.5)
	gt.Value(t, got.ViolationsByCategory).Equal(map[string]int{"Safety": 2})
}

func TestComputeTrends_Window(t *testing.T) {
	summaries := []models.AnalysisSummary{
		summary("DOC-1", "Safety", "2024-03-16", 70, 0),
		summary("DOC-2", "Safety", "2024-03-17", 72.346, 0),
	}

	got := analytics.ComputeTrends(summaries, 30, now)
	gt.Array(t, got.Trends).Length(1)
	gt.Value(t, got.Trends[0].Date).Equal("2024-03-17")
	gt.Value(t, got.Trends[0].CompliancePercentage).Equal(72.35)
}

func TestComputeTrends_UnparseableDate(t *testing.T) {
	got := analytics.ComputeTrends([]models.AnalysisSummary{
		summary("DOC-1", "Quality", "April 2024", 64, 1),
	}, 30, now)

	gt.Array(t, got.Trends).Length(1)
	gt.Value(t, got.Trends[0].Date).Equal("2024-04-15")
	gt.Value(t, got.TotalViolations).Equal(1)
}

func TestComputeTrends_Empty(t *testing.T) {
	got := analytics.ComputeTrends(nil, 30, now)
	gt.Array(t, got.Trends).Length(0)
	gt.Value(t, got.TotalViolations).Equal(0)
	gt.Value(t, got.AverageCompliance).Equal(0.0)
	gt.Value(t, len(got.ViolationsByCategory)).Equal(0)
}

func TestFacilityRisks(t *testing.T) {
	summaries := []models.AnalysisSummary{
		summary("DOC-1", "Environmental", "2024-04-10", 80, 1),
		summary("DOC-2", "Environmental", "2024-04-11", 70, 2),
		summary("DOC-3", "Security", "2024-04-11", 95, 0),
	}
	logs := []models.OperationalLog{
		logRecord("Plant A", "Air Emissions", 27, 20),
		logRecord("Plant A", "Air Emissions", 12, 20),
		logRecord("Plant A", "Pressure", 50, 65),
		logRecord("Plant A", "Vibration", 4, 10),
	}

	got := analytics.FacilityRisks(summaries, logs)
	gt.Value(t, got).Equal([]models.FacilityRisk{
		{ID: "F1", Label: "Plant A - North", Risk: 18},
		{ID: "F2", Label: "Security", Risk: 0},
		{ID: "F3", Label: "Plant A", Risk: 10},
	})

	gt.Value(t, analytics.FacilityRisks(summaries, logs)).Equal(got)
}

func TestFacilityRisks_BoundsAndCap(t *testing.T) {
	var summaries []models.AnalysisSummary
	for i := 0; i < 8; i++ {
		summaries = append(summaries, summary(fmt.Sprintf("DOC-%d", i), fmt.Sprintf("Category %d", i), "2024-04-10", 10, 50))
	}
	logs := []models.OperationalLog{logRecord("Category 0", "Air Emissions", 99, 20)}

	got := analytics.FacilityRisks(summaries, logs)
	gt.Array(t, got).Length(analytics.MaxFacilityRisks)
	gt.Value(t, got[0].Risk).Equal(100)
	gt.Value(t, got[5].ID).Equal("F6")
	for _, r := range got {
		gt.Bool(t, r.Risk >= 0 && r.Risk <= 100).True()
	}
}

func TestExceedanceSeverity(t *testing.T) {
	testCases := []struct {
		value, threshold float64
		want             models.Severity
	}{
		{value: 27, threshold: 20, want: models.SeverityHigh},
		// exactly 30% and exactly 15% stay in the lower band
		{value: 26, threshold: 20, want: models.SeverityMedium},
		{value: 26.2, threshold: 20, want: models.SeverityHigh},
		{value: 24, threshold: 20, want: models.SeverityMedium},
		{value: 23, threshold: 20, want: models.SeverityLow},
		{value: 21, threshold: 20, want: models.SeverityLow},
		{value: 5, threshold: 0, want: models.SeverityHigh},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%v/%v", tc.value, tc.threshold), func(t *testing.T) {
			gt.Value(t, analytics.ExceedanceSeverity(tc.value, tc.threshold)).Equal(tc.want)
		})
	}
}

func TestAlertsFromLogs(t *testing.T) {
	flagged := logRecord("Plant B", "Pressure", 10, 20)
	flagged.Status = models.StatusExceeded

	logs := []models.OperationalLog{
		logRecord("Plant A", "Air Emissions", 27, 20),
		logRecord("Plant A", "Noise Level", 60, 75),
		flagged,
		logRecord("Plant C", "Broken Sensor", 1, 0),
	}

	got := analytics.AlertsFromLogs(logs)
	gt.Array(t, got).Length(3)

	gt.Value(t, got[0].AlertID).Equal("ALERT-1")
	gt.Value(t, got[0].Type).Equal(models.AlertThresholdExceeded)
	gt.Value(t, got[0].Severity).Equal(models.SeverityHigh)
	gt.Value(t, got[0].Message).Equal("Air Emissions exceeded threshold at Plant A. Value: 27 ppm, Threshold: 20 ppm.")
	gt.Value(t, *got[0].Facility).Equal("Plant A")
	gt.Value(t, *got[0].Metric).Equal("Air Emissions")
	gt.Bool(t, got[0].Timestamp.Equal(logs[0].Timestamp)).True()
	gt.Bool(t, got[0].Resolved).False()

	gt.Value(t, got[1].AlertID).Equal("ALERT-2")
	gt.Value(t, got[1].Severity).Equal(models.SeverityLow)

	gt.Value(t, got[2].AlertID).Equal("ALERT-3")
	gt.Value(t, got[2].Severity).Equal(models.SeverityHigh)
}

func TestMergeAlerts(t *testing.T) {
	air := "Air Emissions"
	pressure := "Pressure"

	existing := []models.Alert{
		{AlertID: "ALERT-1", Type: models.AlertThresholdExceeded, Message: "Air Emissions exceeded threshold at Plant A. Value: 27 ppm, Threshold: 20 ppm.", Metric: &air},
		{AlertID: "ALERT-2", Type: models.AlertThresholdExceeded, Message: "Pressure exceeded threshold at Plant B. Value: 70 psi, Threshold: 65 psi.", Metric: &pressure, Resolved: true},
	}

	incoming := analytics.AlertsFromLogs([]models.OperationalLog{
		logRecord("Plant C", "Air Emissions", 30, 20),
		logRecord("Plant B", "Pressure", 80, 65),
		logRecord("Plant C", "Pressure", 90, 65),
		logRecord("Plant C", "Vibration", 12, 10),
	})

	merged, added := analytics.MergeAlerts(existing, incoming)
	gt.Array(t, added).Length(2)
	gt.Value(t, added[0].AlertID).Equal("ALERT-3")
	gt.Value(t, *added[0].Metric).Equal("Pressure")
	gt.Value(t, *added[0].Facility).Equal("Plant B")
	gt.Value(t, added[1].AlertID).Equal("ALERT-4")
	gt.Value(t, *added[1].Metric).Equal("Vibration")

	gt.Array(t, merged).Length(4)
	gt.Value(t, merged[0].AlertID).Equal("ALERT-1")
	gt.Value(t, merged[3].AlertID).Equal("ALERT-4")

	_, again := analytics.MergeAlerts(merged, incoming)
	gt.Array(t, again).Length(0)
}

func TestMergeAlerts_NumbersAfterHighestID(t *testing.T) {
	existing := []models.Alert{
		{AlertID: "ALERT-56", Type: models.AlertComplianceViolation, Message: "Missing weekly inspection report for Plant A"},
	}
	incoming := analytics.AlertsFromLogs([]models.OperationalLog{logRecord("Plant A", "Vibration", 12, 10)})

	_, added := analytics.MergeAlerts(existing, incoming)
	gt.Array(t, added).Length(1)
	gt.Value(t, added[0].AlertID).Equal("ALERT-57")
}

func TestHistoricalAverageAndTrendAlert(t *testing.T) {
	logs := []models.OperationalLog{
		logRecord("Plant A", "Air Emissions", 18.5, 20),
		logRecord("Plant B", "Air Emissions", 19.5, 20),
		logRecord("Plant B", "Pressure", 40, 65),
	}

	avg, ok := analytics.HistoricalAverage(logs, "Air Emissions")
	gt.Bool(t, ok).True()
	gt.Value(t, avg.Samples).Equal(2)
	gt.Value(t, avg.Mean).Equal(19.0)
	gt.Value(t, avg.Threshold).Equal(20.0)

	alert := analytics.TrendAlert(avg, 90, now)
	gt.Value(t, alert).NotNil()
	gt.Value(t, alert.Type).Equal(models.AlertTrendAnalysis)
	gt.Value(t, alert.Severity).Equal(models.SeverityLow)
	gt.Value(t, alert.Message).Equal("Historical average for Air Emissions (19.0 ppm) is approaching threshold of 20 ppm")
	gt.Bool(t, alert.Timestamp.Equal(now)).True()

	_, added := analytics.MergeAlerts([]models.Alert{*alert}, []models.Alert{*alert})
	gt.Array(t, added).Length(0)

	pressure, ok := analytics.HistoricalAverage(logs, "Pressure")
	gt.Bool(t, ok).True()
	gt.Bool(t, analytics.TrendAlert(pressure, 90, now) == nil).True()

	_, ok = analytics.HistoricalAverage(logs, "Noise Level")
	gt.Bool(t, ok).False()
}

func TestRecentActivity(t *testing.T) {
	docs := []models.Document{
		{ID: "DOC-1", Title: "Old", Category: "Safety", PublishedAt: "2024-04-10"},
		{ID: "DOC-2", Title: "New", Category: "Quality", PublishedAt: "2024-04-12"},
	}
	alerts := []models.Alert{
		{AlertID: "ALERT-1", Type: models.AlertThresholdExceeded, Message: "m", Timestamp: time.Date(2024, 4, 11, 9, 0, 0, 0, time.UTC)},
	}

	got := analytics.RecentActivity(docs, alerts, 2)
	gt.Array(t, got).Length(2)
	gt.Value(t, got[0].ID).Equal("DOC-2")
	gt.Value(t, got[0].Kind).Equal(models.ActivityDocument)
	gt.Value(t, got[1].ID).Equal("ALERT-1")
	gt.Value(t, got[1].Kind).Equal(models.ActivityAlert)

	all := analytics.RecentActivity(docs, alerts, 0)
	gt.Array(t, all).Length(3)
	gt.Value(t, all[2].ID).Equal("DOC-1")
}
