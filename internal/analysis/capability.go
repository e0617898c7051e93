package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/pkg/logger"
)

const (
	MaxRules  = 8
	MaxIssues = 5
)

const (
	IssueMixedModal       = "Mixed use of mandatory ('must') and advisory ('should') language"
	IssueInsufficient     = "Document may lack sufficient detail for compliance requirements"
	IssueMissingEnvMetric = "Environmental document may be missing key environmental metrics"
)

// Capability extracts rules and detects issues in a compliance document.
type Capability interface {
	ExtractRules(ctx context.Context, text, category string) ([]string, error)
	DetectInconsistencies(ctx context.Context, text, category string) ([]string, error)
}

// DefaultRules is what PatternCapability returns when no obligation phrase is
// found.
var DefaultRules = []string{
	"Maintain operational standards",
	"Conduct regular inspections",
	"Document all activities",
}

var (
	obligationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)must ([^.]+)`),
		regexp.MustCompile(`(?i)required to ([^.]+)`),
		regexp.MustCompile(`(?i)shall ([^.]+)`),
		regexp.MustCompile(`(?i)mandatory ([^.]+)`),
	}
)

// PatternCapability is the deterministic rule-based capability. It never
// returns an error.
type PatternCapability struct{}

var _ Capability = PatternCapability{}

func (PatternCapability) ExtractRules(_ context.Context, text, _ string) ([]string, error) {
	seen := make(map[string]struct{})
	rules := make([]string, 0, MaxRules)

	for _, sentence := range sentences(text) {
		for _, pattern := range obligationPatterns {
			for _, match := range pattern.FindAllStringSubmatch(sentence, -1) {
				rule := strings.TrimSpace(match[1])
				if rule == "" {
					continue
				}
				if _, dup := seen[rule]; dup {
					continue
				}
				seen[rule] = struct{}{}
				rules = append(rules, rule)
				if len(rules) == MaxRules {
					return rules, nil
				}
			}
		}
	}

	if len(rules) == 0 {
		return append([]string(nil), DefaultRules...), nil
	}
	return rules, nil
}

func (PatternCapability) DetectInconsistencies(_ context.Context, text, category string) ([]string, error) {
	issues := []string{}

	if hasMixedModals(text) {
		issues = append(issues, IssueMixedModal)
	}

	if len(text) < 100 {
		issues = append(issues, IssueInsufficient)
	}

	if category == "Environmental" {
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "emissions") && !strings.Contains(lower, "discharge") {
			issues = append(issues, IssueMissingEnvMetric)
		}
	}

	return issues, nil
}

// sentences splits text with prose's segmenter, keeping the whole text as a
// single sentence if segmentation fails.
func sentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		logger.Debug("Sentence segmentation failed", zap.Error(err))
		return []string{text}
	}

	sents := doc.Sentences()
	if len(sents) == 0 {
		return []string{text}
	}

	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out
}

// hasMixedModals is a plain substring check, so words like "mustard" count.
func hasMixedModals(text string) bool {
	lower := strings.ToLower(text)
	mandatory := strings.Contains(lower, "must") || strings.Contains(lower, "shall")
	return mandatory && strings.Contains(lower, "should")
}
