package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zaintech991/ReguLens/internal/metrics"
	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

// Analyzer scores documents. Each capability call goes to the primary first
// and falls back to the pattern capability on any failure, so Analyze never
// fails.
type Analyzer struct {
	primary  Capability
	fallback Capability
	timeout  time.Duration
	workers  int
	now      func() time.Time
}

type Option func(*Analyzer)

func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// New builds an Analyzer. primary may be nil, in which case every call uses
// the pattern capability.
func New(primary Capability, opts ...Option) *Analyzer {
	a := &Analyzer{
		primary:  primary,
		fallback: PatternCapability{},
		timeout:  20 * time.Second,
		workers:  4,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Analyze(ctx context.Context, documentID, text, category string) models.DocumentAnalysis {
	start := time.Now()

	rules, rulesSource := a.extractRules(ctx, text, category)
	issues, issuesSource := a.detectInconsistencies(ctx, text, category)

	score := ComplianceScore(text, issues, rules)
	risk := RiskLevel(score, len(issues))

	source := models.SourceMixed
	if rulesSource == issuesSource {
		source = rulesSource
	}

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysisTotal.WithLabelValues(string(source)).Inc()
	metrics.ComplianceScore.Observe(score)

	logger.Debug("Document analyzed",
		zap.String("document_id", documentID),
		zap.Float64("compliance_score", score),
		zap.String("risk_level", string(risk)),
		zap.String("source", string(source)),
	)

	return models.DocumentAnalysis{
		DocumentID:      documentID,
		ExtractedRules:  rules,
		Inconsistencies: issues,
		ComplianceScore: score,
		RiskLevel:       risk,
		Source:          source,
		AnalyzedAt:      a.now(),
	}
}

// AnalyzeAll analyzes docs concurrently, bounded by the configured worker
// count. Results line up with docs by index. It only fails when ctx is done
// before every document has started.
func (a *Analyzer) AnalyzeAll(ctx context.Context, docs []models.Document) ([]models.DocumentAnalysis, error) {
	results := make([]models.DocumentAnalysis, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(a.workers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.Analyze(ctx, doc.ID, doc.Body, doc.Category)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Documents analyzed", zap.Int("count", len(docs)))
	return results, nil
}

func (a *Analyzer) extractRules(ctx context.Context, text, category string) ([]string, models.AnalysisSource) {
	if a.primary != nil {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		rules, err := a.primary.ExtractRules(callCtx, text, category)
		cancel()

		if err == nil && len(rules) > 0 {
			return capList(rules, MaxRules), models.SourceAI
		}
		a.recordFallback("extract_rules", err)
	}

	rules, err := a.fallback.ExtractRules(ctx, text, category)
	if err != nil || len(rules) == 0 {
		return append([]string(nil), DefaultRules...), models.SourceFallback
	}
	return rules, models.SourceFallback
}

func (a *Analyzer) detectInconsistencies(ctx context.Context, text, category string) ([]string, models.AnalysisSource) {
	if a.primary != nil {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		issues, err := a.primary.DetectInconsistencies(callCtx, text, category)
		cancel()

		if err == nil {
			if issues == nil {
				issues = []string{}
			}
			return capList(issues, MaxIssues), models.SourceAI
		}
		a.recordFallback("detect_inconsistencies", err)
	}

	issues, err := a.fallback.DetectInconsistencies(ctx, text, category)
	if err != nil {
		return []string{}, models.SourceFallback
	}
	return issues, models.SourceFallback
}

func (a *Analyzer) recordFallback(operation string, err error) {
	metrics.CapabilityFallbacks.WithLabelValues(operation).Inc()

	fields := []zap.Field{zap.String("operation", operation)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	} else {
		fields = append(fields, zap.String("reason", "empty result"))
	}
	logger.Warn("Language model capability failed, using rule-based analysis", fields...)
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
