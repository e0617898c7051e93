package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/analysis"
	"github.com/zaintech991/ReguLens/internal/analytics"
	"github.com/zaintech991/ReguLens/internal/metrics"
	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/internal/synthetic"
	"github.com/zaintech991/ReguLens/pkg/logger"
	"github.com/zaintech991/ReguLens/pkg/utils"
)

const DefaultCategory = "Regulatory"

var (
	ErrEmptyDocument   = errors.New("document has no text content")
	ErrInvalidEncoding = errors.New("document is not valid UTF-8")
)

// AlertPublisher receives alerts after they are stored. The Redis client
// satisfies it.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []models.Alert) error
	IncrementMetric(ctx context.Context, metricName string) error
}

type Config struct {
	TrendAlertMetric  string
	TrendAlertPercent float64
	Categories        []string
}

type Processor struct {
	repo      storage.Repository
	analyzer  *analysis.Analyzer
	generator *synthetic.Generator
	publisher AlertPublisher
	cfg       Config
	now       func() time.Time
}

// NewProcessor wires the pipeline. publisher may be nil.
func NewProcessor(repo storage.Repository, analyzer *analysis.Analyzer, generator *synthetic.Generator, publisher AlertPublisher, cfg Config) *Processor {
	if cfg.TrendAlertPercent <= 0 {
		cfg.TrendAlertPercent = 90
	}
	if cfg.TrendAlertMetric == "" {
		cfg.TrendAlertMetric = "Air Emissions"
	}

	return &Processor{
		repo:      repo,
		analyzer:  analyzer,
		generator: generator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetClock overrides the processor clock, for tests.
func (p *Processor) SetClock(now func() time.Time) {
	p.now = now
}

type UploadInput struct {
	Filename    string
	ContentType string
	Title       string
	Category    string
	Content     []byte
}

type UploadResult struct {
	Document models.Document         `json:"document"`
	Analysis models.DocumentAnalysis `json:"analysis"`
}

// Upload stores a new document and returns it with its analysis. HTML
// uploads are reduced to their visible text first.
func (p *Processor) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if !utf8.Valid(in.Content) {
		return nil, ErrInvalidEncoding
	}

	text := string(in.Content)
	title := strings.TrimSpace(in.Title)

	if IsHTML(in.Filename, in.ContentType) {
		if title == "" {
			title = ExtractTitle(text)
		}
		text = CleanHTML(text)
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}
	if title == "" || title == "." {
		title = "Uploaded Document"
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	now := p.now()
	doc := models.Document{
		ID:          utils.NewDocumentID(),
		Title:       title,
		Body:        text,
		Category:    category,
		PublishedAt: now.Format(models.DateLayout),
		CreatedAt:   now,
	}

	if err := p.repo.SaveDocuments(ctx, []models.Document{doc}); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	metrics.DocumentsProcessed.Inc()

	result := p.analyzer.Analyze(ctx, doc.ID, doc.Body, doc.Category)

	logger.Info("Document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("category", doc.Category),
		zap.Int("bytes", len(doc.Body)),
		zap.Float64("compliance_score", result.ComplianceScore),
	)

	return &UploadResult{Document: doc, Analysis: result}, nil
}

func (p *Processor) AnalyzeDocument(ctx context.Context, id string) (*models.DocumentAnalysis, error) {
	doc, err := p.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	result := p.analyzer.Analyze(ctx, doc.ID, doc.Body, doc.Category)
	return &result, nil
}

func (p *Processor) AnalyzeAll(ctx context.Context) ([]models.DocumentAnalysis, error) {
	docs, err := p.repo.LoadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	return p.analyzer.AnalyzeAll(ctx, docs)
}

// Summaries analyzes every stored document and pairs each result with its
// document metadata.
func (p *Processor) Summaries(ctx context.Context) ([]models.AnalysisSummary, error) {
	docs, err := p.repo.LoadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	results, err := p.analyzer.AnalyzeAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.AnalysisSummary, 0, len(docs))
	for i, doc := range docs {
		summaries = append(summaries, models.Summarize(doc, results[i]))
	}
	return summaries, nil
}

type GenerateRequest struct {
	DocumentCount   int
	LogCount        int
	ReplaceExisting bool
}

type GenerateResult struct {
	Message            string    `json:"message"`
	DocumentsGenerated int       `json:"documents_generated"`
	LogsGenerated      int       `json:"logs_generated"`
	Timestamp          time.Time `json:"timestamp"`
}

// GenerateData fills the store with synthetic documents and logs. Without
// ReplaceExisting it is a no-op when the store already holds at least
// DocumentCount documents; otherwise new records are appended.
func (p *Processor) GenerateData(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	existing, err := p.repo.LoadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	if !req.ReplaceExisting && len(existing) >= req.DocumentCount {
		return &GenerateResult{
			Message:            fmt.Sprintf("Using existing %d documents. Set replace_existing=true to regenerate.", len(existing)),
			DocumentsGenerated: 0,
			LogsGenerated:      0,
			Timestamp:          p.now(),
		}, nil
	}

	offset := len(existing)
	if req.ReplaceExisting {
		offset = 0
	}

	docs := p.generator.Documents(req.DocumentCount, offset, p.cfg.Categories)
	logs := p.generator.Logs(req.LogCount)

	if req.ReplaceExisting {
		if err := p.repo.ReplaceDocuments(ctx, docs); err != nil {
			return nil, fmt.Errorf("failed to replace documents: %w", err)
		}
		if err := p.repo.ReplaceLogs(ctx, logs); err != nil {
			return nil, fmt.Errorf("failed to replace logs: %w", err)
		}
	} else {
		if err := p.repo.SaveDocuments(ctx, docs); err != nil {
			return nil, fmt.Errorf("failed to save documents: %w", err)
		}
		if err := p.repo.SaveLogs(ctx, logs); err != nil {
			return nil, fmt.Errorf("failed to save logs: %w", err)
		}
	}

	metrics.DocumentsProcessed.Add(float64(len(docs)))
	metrics.LogsIngested.Add(float64(len(logs)))

	logger.Info("Synthetic data generated",
		zap.Int("documents", len(docs)),
		zap.Int("logs", len(logs)),
		zap.Bool("replaced", req.ReplaceExisting),
	)

	return &GenerateResult{
		Message:            fmt.Sprintf("Generated %d documents and %d operational logs", len(docs), len(logs)),
		DocumentsGenerated: len(docs),
		LogsGenerated:      len(logs),
		Timestamp:          p.now(),
	}, nil
}

type AlertRequest struct {
	FromLogs          bool
	IncludeHistorical bool
}

// GenerateAlerts derives candidate alerts, merges them into the store and
// returns only the ones that were added.
func (p *Processor) GenerateAlerts(ctx context.Context, req AlertRequest) ([]models.Alert, error) {
	logs, err := p.repo.LoadLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}

	var candidates []models.Alert
	if req.FromLogs {
		candidates = append(candidates, analytics.AlertsFromLogs(logs)...)
	}
	if req.IncludeHistorical {
		if avg, ok := analytics.HistoricalAverage(logs, p.cfg.TrendAlertMetric); ok {
			if alert := analytics.TrendAlert(avg, p.cfg.TrendAlertPercent, p.now()); alert != nil {
				candidates = append(candidates, *alert)
			}
		}
	}

	existing, err := p.repo.ListAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	merged, added := analytics.MergeAlerts(existing, candidates)
	if len(added) > 0 {
		if err := p.repo.AppendAlerts(ctx, added); err != nil {
			return nil, fmt.Errorf("failed to store alerts: %w", err)
		}
	}

	for _, alert := range added {
		metrics.AlertsGenerated.WithLabelValues(string(alert.Severity)).Inc()
	}
	metrics.AlertsSuppressed.Add(float64(len(candidates) - len(added)))
	metrics.OpenAlerts.Set(float64(countOpen(merged)))

	logger.Info("Alerts generated",
		zap.Int("candidates", len(candidates)),
		zap.Int("added", len(added)),
	)

	p.publish(ctx, added)
	return added, nil
}

func (p *Processor) ResolveAlert(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := p.repo.ResolveAlert(ctx, id, p.now())
	if err != nil {
		return nil, err
	}
	metrics.OpenAlerts.Dec()

	logger.Info("Alert resolved", zap.String("alert_id", id))
	return alert, nil
}

type PipelineRequest struct {
	GenerateNewData bool
	DocumentCount   int
	LogCount        int
}

type PipelineResult struct {
	Timestamp         time.Time                 `json:"timestamp"`
	DataGeneration    *GenerateResult           `json:"data_generation"`
	DocumentsAnalyzed int                       `json:"documents_analyzed"`
	AlertsGenerated   int                       `json:"alerts_generated"`
	Analyses          []models.DocumentAnalysis `json:"analyses"`
	Alerts            []models.Alert            `json:"alerts"`
}

// RunPipeline optionally regenerates data, analyzes every document and
// raises alerts from the logs.
func (p *Processor) RunPipeline(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	result := &PipelineResult{Timestamp: p.now()}

	if req.GenerateNewData {
		gen, err := p.GenerateData(ctx, GenerateRequest{
			DocumentCount:   req.DocumentCount,
			LogCount:        req.LogCount,
			ReplaceExisting: true,
		})
		if err != nil {
			return nil, err
		}
		result.DataGeneration = gen
	}

	analyses, err := p.AnalyzeAll(ctx)
	if err != nil {
		return nil, err
	}
	result.Analyses = analyses
	result.DocumentsAnalyzed = len(analyses)

	alerts, err := p.GenerateAlerts(ctx, AlertRequest{FromLogs: true})
	if err != nil {
		return nil, err
	}
	result.Alerts = alerts
	result.AlertsGenerated = len(alerts)

	if p.publisher != nil {
		if err := p.publisher.IncrementMetric(ctx, "pipeline_runs"); err != nil {
			logger.Warn("Failed to record pipeline run", zap.Error(err))
		}
	}

	logger.Info("Pipeline completed",
		zap.Int("documents_analyzed", result.DocumentsAnalyzed),
		zap.Int("alerts_generated", result.AlertsGenerated),
	)
	return result, nil
}

// publish forwards alerts to the feed. Feed failures are logged and never
// fail the caller.
func (p *Processor) publish(ctx context.Context, alerts []models.Alert) {
	if p.publisher == nil || len(alerts) == 0 {
		return
	}

	if err := p.publisher.PublishAlerts(ctx, alerts); err != nil {
		logger.Warn("Failed to publish alerts", zap.Error(err), zap.Int("count", len(alerts)))
		return
	}
	if err := p.publisher.IncrementMetric(ctx, "alerts_published"); err != nil {
		logger.Warn("Failed to record published alerts", zap.Error(err))
	}
}

func countOpen(alerts []models.Alert) int {
	n := 0
	for _, a := range alerts {
		if !a.Resolved {
			n++
		}
	}
	return n
}
