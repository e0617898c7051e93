package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/analysis"
	"github.com/zaintech991/ReguLens/internal/cache/redis"
	"github.com/zaintech991/ReguLens/internal/ingestion"
	"github.com/zaintech991/ReguLens/internal/llm"
	"github.com/zaintech991/ReguLens/internal/metrics"
	"github.com/zaintech991/ReguLens/internal/storage"
	"github.com/zaintech991/ReguLens/internal/storage/memory"
	"github.com/zaintech991/ReguLens/internal/storage/sqlite"
	"github.com/zaintech991/ReguLens/internal/synthetic"
	"github.com/zaintech991/ReguLens/pkg/config"
	appLogger "github.com/zaintech991/ReguLens/pkg/logger"
)

type globalOptions struct {
	configPath string
	inMemory   bool
}

func (o *globalOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			Sources:     cli.EnvVars("REGULENS_CONFIG"),
			Destination: &o.configPath,
		},
		&cli.BoolFlag{
			Name:        "memory",
			Usage:       "Keep all data in memory instead of SQLite",
			Sources:     cli.EnvVars("REGULENS_MEMORY"),
			Destination: &o.inMemory,
		},
	}
}

// runtime holds the wired components shared by every command.
type runtime struct {
	cfg       *config.Config
	repo      storage.Repository
	feed      *redis.Client
	processor *ingestion.Processor
}

func newRuntime(ctx context.Context, opts *globalOptions) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if err := appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	metrics.Init()

	repo, err := openRepository(ctx, cfg, opts.inMemory)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, repo: repo}

	// A nil interface keeps the analyzer on the pattern capability.
	var capability analysis.Capability
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		capability = llm.NewClient(llm.Options{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		})
	} else {
		appLogger.Warn("LLM disabled or no API key configured, using pattern analysis only")
	}

	analyzer := analysis.New(capability,
		analysis.WithTimeout(time.Duration(cfg.LLM.TimeoutSec)*time.Second),
		analysis.WithWorkers(cfg.Pipeline.Workers),
	)

	seed := cfg.Pipeline.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var publisher ingestion.AlertPublisher
	if cfg.Redis.Enabled {
		feed, err := redis.NewClient(ctx,
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.Channel,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, alert feed disabled", zap.Error(err))
		} else {
			rt.feed = feed
			publisher = feed
		}
	}

	rt.processor = ingestion.NewProcessor(repo, analyzer, synthetic.New(seed, time.Now), publisher, ingestion.Config{
		TrendAlertMetric:  cfg.Analytics.TrendAlertMetric,
		TrendAlertPercent: cfg.Analytics.TrendAlertPercent,
		Categories:        cfg.Analytics.Categories,
	})

	return rt, nil
}

func (rt *runtime) Close() {
	if rt.feed != nil {
		if err := rt.feed.Close(); err != nil {
			appLogger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := rt.repo.Close(); err != nil {
		appLogger.Warn("Failed to close repository", zap.Error(err))
	}
}

func openRepository(ctx context.Context, cfg *config.Config, inMemory bool) (storage.Repository, error) {
	if inMemory {
		appLogger.Info("Using in-memory repository")
		return memory.New(), nil
	}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	client, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return client, nil
}
