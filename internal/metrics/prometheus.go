package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "regulens_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"route", "status"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "regulens_analysis_duration_seconds",
			Help:    "Document analysis duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20},
		},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulens_analysis_total",
			Help: "Total document analyses by result source",
		},
		[]string{"source"},
	)

	CapabilityFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulens_capability_fallback_total",
			Help: "Total times the language model capability failed and the rule-based path was used",
		},
		[]string{"operation"},
	)

	ComplianceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "regulens_compliance_score",
			Help:    "Distribution of document compliance scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 90, 100},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulens_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	DocumentsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "regulens_documents_processed_total",
			Help: "Total documents ingested",
		},
	)

	LogsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "regulens_operational_logs_ingested_total",
			Help: "Total operational log records ingested",
		},
	)

	AlertsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regulens_alerts_generated_total",
			Help: "Total alerts generated by severity",
		},
		[]string{"severity"},
	)

	AlertsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "regulens_alerts_suppressed_total",
			Help: "Total candidate alerts dropped as duplicates of unresolved alerts",
		},
	)

	OpenAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "regulens_open_alerts",
			Help: "Number of unresolved alerts",
		},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "regulens_circuit_breaker_state",
			Help: "Circuit breaker state by dependency",
		},
		[]string{"name"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(AnalysisTotal)
		prometheus.MustRegister(CapabilityFallbacks)
		prometheus.MustRegister(ComplianceScore)
		prometheus.MustRegister(LLMTokensUsed)
		prometheus.MustRegister(DocumentsProcessed)
		prometheus.MustRegister(LogsIngested)
		prometheus.MustRegister(AlertsGenerated)
		prometheus.MustRegister(AlertsSuppressed)
		prometheus.MustRegister(OpenAlerts)
		prometheus.MustRegister(BreakerState)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Middleware records request latency by matched route and status.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		RequestDuration.WithLabelValues(c.Route().Path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		return err
	}
}
