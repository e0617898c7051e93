package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the layout of Document.PublishedAt.
const DateLayout = "2006-01-02"

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type AlertType string

const (
	AlertThresholdExceeded   AlertType = "ThresholdExceeded"
	AlertComplianceViolation AlertType = "ComplianceViolation"
	AlertTrendAnalysis       AlertType = "TrendAnalysis"
)

type LogStatus string

const (
	StatusNormal   LogStatus = "NORMAL"
	StatusExceeded LogStatus = "EXCEEDED"
)

// AnalysisSource records which capability produced an analysis.
type AnalysisSource string

const (
	SourceAI       AnalysisSource = "ai"
	SourceFallback AnalysisSource = "fallback"
	SourceMixed    AnalysisSource = "mixed"
)

type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	PublishedAt string    `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentAnalysis struct {
	DocumentID      string         `json:"document_id"`
	ExtractedRules  []string       `json:"extracted_rules"`
	Inconsistencies []string       `json:"inconsistencies"`
	ComplianceScore float64        `json:"compliance_score"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	Source          AnalysisSource `json:"source"`
	AnalyzedAt      time.Time      `json:"analyzed_at"`
}

type OperationalLog struct {
	ID        string    `json:"id"`
	Facility  string    `json:"facility"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
	Status    LogStatus `json:"status"`
}

// Exceeded recomputes the exceedance from Value and Threshold; the persisted
// Status is only a hint.
func (l OperationalLog) Exceeded() bool {
	return l.Value > l.Threshold
}

// DeriveStatus returns the status implied by Value and Threshold.
func (l OperationalLog) DeriveStatus() LogStatus {
	if l.Exceeded() {
		return StatusExceeded
	}
	return StatusNormal
}

type Alert struct {
	AlertID    string     `json:"alert_id"`
	Type       AlertType  `json:"type"`
	Message    string     `json:"message"`
	Severity   Severity   `json:"severity"`
	Timestamp  time.Time  `json:"timestamp"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Facility   *string    `json:"facility"`
	Metric     *string    `json:"metric"`
}

// Resolve marks the alert resolved at the given time. It reports false when
// the alert was already resolved, leaving it untouched.
func (a *Alert) Resolve(at time.Time) bool {
	if a.Resolved {
		return false
	}
	a.Resolved = true
	a.ResolvedAt = &at
	return true
}

// MarshalJSON emits RFC3339 timestamps in UTC.
func (a Alert) MarshalJSON() ([]byte, error) {
	type alias Alert
	out := alias(a)
	out.Timestamp = a.Timestamp.UTC()
	if a.ResolvedAt != nil {
		at := a.ResolvedAt.UTC()
		out.ResolvedAt = &at
	}
	return json.Marshal(out)
}

type Deviation struct {
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Unit       string    `json:"unit"`
	Deviation  float64   `json:"deviation"`
	Percentage float64   `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
	Facility   string    `json:"facility"`
}

// AnalysisSummary is the per-document row the aggregators work on.
type AnalysisSummary struct {
	DocumentID           string    `json:"document_id"`
	Category             string    `json:"category"`
	ComplianceScore      float64   `json:"compliance_score"`
	RiskLevel            RiskLevel `json:"risk_level"`
	InconsistenciesCount int       `json:"inconsistencies_count"`
	PublishedAt          string    `json:"published_at"`
}

func Summarize(doc Document, analysis DocumentAnalysis) AnalysisSummary {
	return AnalysisSummary{
		DocumentID:           doc.ID,
		Category:             doc.Category,
		ComplianceScore:      analysis.ComplianceScore,
		RiskLevel:            analysis.RiskLevel,
		InconsistenciesCount: len(analysis.Inconsistencies),
		PublishedAt:          doc.PublishedAt,
	}
}

type TrendPoint struct {
	Date                 string  `json:"date"`
	CompliancePercentage float64 `json:"compliance_percentage"`
	Violations           int     `json:"violations"`
	Inspections          int     `json:"inspections"`
}

type TrendReport struct {
	Trends               []TrendPoint   `json:"trends"`
	ViolationsByCategory map[string]int `json:"violations_by_category"`
	TotalViolations      int            `json:"total_violations"`
	AverageCompliance    float64        `json:"average_compliance"`
}

type FacilityRisk struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Risk  int    `json:"risk"`
}

type SafetyMetrics struct {
	TotalMetricsTracked    int     `json:"total_metrics_tracked"`
	ThresholdExceededCount int     `json:"threshold_exceeded_count"`
	ComplianceRate         float64 `json:"compliance_rate"`
	AverageDeviation       float64 `json:"average_deviation"`
}

type ActivityKind string

const (
	ActivityDocument ActivityKind = "document"
	ActivityAlert    ActivityKind = "alert"
)

type Activity struct {
	Kind      ActivityKind `json:"kind"`
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Detail    string       `json:"detail"`
	Timestamp time.Time    `json:"timestamp"`
}
