package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Pipeline  PipelineConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   int
	WriteTimeout  int
	BodyLimit     int
	IsDevelopment bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

type LLMConfig struct {
	Enabled     bool
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type PipelineConfig struct {
	Workers          int
	DefaultDocuments int
	DefaultLogs      int
	Seed             int64
}

type AnalyticsConfig struct {
	TrendWindowDays   int
	RecentLimit       int
	TrendAlertMetric  string
	TrendAlertPercent float64
	Categories        []string
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type CORSConfig struct {
	AllowOrigins []string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// Load reads config.yaml from the usual search paths and overlays
// REGULENS_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/regulens")
	}

	v.SetEnvPrefix("REGULENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// GROQ_API_KEY is honoured for compatibility with existing deployments.
	_ = v.BindEnv("llm.apiKey", "REGULENS_LLM_APIKEY", "GROQ_API_KEY")
	_ = v.BindEnv("llm.model", "REGULENS_LLM_MODEL", "GROQ_MODEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline workers must be positive, got %d", c.Pipeline.Workers)
	}
	if c.Analytics.TrendWindowDays <= 0 {
		return fmt.Errorf("trend window must be positive, got %d", c.Analytics.TrendWindowDays)
	}
	if c.LLM.TimeoutSec <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %d", c.LLM.TimeoutSec)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 10485760)
	v.SetDefault("server.isDevelopment", true)

	v.SetDefault("sqlite.path", "./data/regulens.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "regulens:alerts")

	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.baseURL", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.maxTokens", 500)
	v.SetDefault("llm.timeoutSec", 20)

	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.defaultDocuments", 10)
	v.SetDefault("pipeline.defaultLogs", 50)
	v.SetDefault("pipeline.seed", 0)

	v.SetDefault("analytics.trendWindowDays", 30)
	v.SetDefault("analytics.recentLimit", 5)
	v.SetDefault("analytics.trendAlertMetric", "Air Emissions")
	v.SetDefault("analytics.trendAlertPercent", 90.0)
	v.SetDefault("analytics.categories", []string{
		"Environmental", "Safety", "Data Privacy", "Financial",
		"Quality", "Health", "Security", "Regulatory",
	})

	v.SetDefault("rateLimit.maxRequestsPerMinute", 120)

	v.SetDefault("cors.allowOrigins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
