package analytics

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/analysis"
	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

type dateBucket struct {
	scoreSum    float64
	violations  int
	inspections int
}

// ComputeTrends groups analyses published within the last windowDays by
// publish date. Dates without analyses produce no point.
// AverageCompliance is the mean of the per-date means.
func ComputeTrends(summaries []models.AnalysisSummary, windowDays int, now time.Time) models.TrendReport {
	cutoff := now.AddDate(0, 0, -windowDays)
	today := now.Format(models.DateLayout)

	buckets := make(map[string]*dateBucket)
	byCategory := make(map[string]int)

	for _, s := range summaries {
		date := s.PublishedAt
		published, err := time.ParseInLocation(models.DateLayout, date, now.Location())
		if err != nil {
			logger.Warn("Unparseable publish date, using today",
				zap.String("document_id", s.DocumentID),
				zap.String("published_at", s.PublishedAt),
			)
			date = today
		} else if published.Before(cutoff) {
			continue
		}

		b, ok := buckets[date]
		if !ok {
			b = &dateBucket{}
			buckets[date] = b
		}
		b.scoreSum += s.ComplianceScore
		b.violations += s.InconsistenciesCount
		b.inspections++

		if s.InconsistenciesCount > 0 {
			byCategory[s.Category] += s.InconsistenciesCount
		}
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	report := models.TrendReport{
		Trends:               make([]models.TrendPoint, 0, len(dates)),
		ViolationsByCategory: byCategory,
	}

	percentSum := 0.0
	for _, date := range dates {
		b := buckets[date]
		point := models.TrendPoint{
			Date:                 date,
			CompliancePercentage: analysis.Round2(b.scoreSum / float64(b.inspections)),
			Violations:           b.violations,
			Inspections:          b.inspections,
		}
		report.Trends = append(report.Trends, point)
		report.TotalViolations += point.Violations
		percentSum += point.CompliancePercentage
	}

	if len(report.Trends) > 0 {
		report.AverageCompliance = analysis.Round2(percentSum / float64(len(report.Trends)))
	}

	return report
}
