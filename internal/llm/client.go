package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/metrics"
	"github.com/zaintech991/ReguLens/pkg/circuitbreaker"
	"github.com/zaintech991/ReguLens/pkg/logger"
	"github.com/zaintech991/ReguLens/pkg/retry"
)

const (
	MaxRules  = 8
	MaxIssues = 5
)

var (
	ErrEmptyResponse     = errors.New("llm returned no content")
	ErrMalformedResponse = errors.New("llm response contains no JSON array")
)

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}

	onStateChange := func(name string, _, to circuitbreaker.State) {
		metrics.BreakerState.WithLabelValues(name).Set(float64(to))
	}

	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OnStateChange:    onStateChange,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    2,
		InitialDelay:   250 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Retryable:      isRetryable,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized",
		zap.String("model", opts.Model),
		zap.String("base_url", cfg.BaseURL),
	)

	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// Complete sends one chat completion. The whole call, retries included, is
// bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	var result *CompletionResponse

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return ErrEmptyResponse
			}

			metrics.LLMTokensUsed.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			result = &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) ExtractRules(ctx context.Context, text, category string) ([]string, error) {
	systemPrompt := "You are a compliance analysis expert. Extract compliance rules from documents. Always return valid JSON arrays only."

	userPrompt := fmt.Sprintf(`Analyze the following %s compliance document and extract all compliance rules and requirements.
Return only a JSON array of strings, each string being a specific compliance rule or requirement.

Document text:
%s

Return format: ["rule 1", "rule 2", "rule 3", ...]
Maximum %d rules. Be specific and concise.`, category, text, MaxRules)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.3,
		MaxTokens:    500,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract rules: %w", err)
	}

	rules, err := ParseStringArray(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("failed to extract rules: %w", ErrEmptyResponse)
	}

	return capList(rules, MaxRules), nil
}

func (c *Client) DetectInconsistencies(ctx context.Context, text, category string) ([]string, error) {
	systemPrompt := "You are a compliance auditor. Identify inconsistencies and compliance issues. Always return valid JSON arrays only."

	userPrompt := fmt.Sprintf(`Analyze this %s compliance document for inconsistencies, ambiguities, or potential compliance issues.

Document text:
%s

Return a JSON array of strings, each describing a specific inconsistency or issue found. If no issues are found, return an empty array.

Return format: ["issue 1", "issue 2", ...]
Maximum %d issues.`, category, text, MaxIssues)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.4,
		MaxTokens:    400,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect inconsistencies: %w", err)
	}

	issues, err := ParseStringArray(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inconsistencies: %w", err)
	}

	return capList(issues, MaxIssues), nil
}

// isRetryable keeps client errors (bad key, bad request) from being retried.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	return true
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
