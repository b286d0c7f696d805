package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "NEWSSCOPE_CONFIG"
	newsAPIKeyEnv   = "NEWS_API_KEY"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
	mlURLEnv        = "ML_INFERENCE_URL"
	mlAPIKeyEnv     = "ML_API_KEY"
	logLevelEnv     = "LOG_LEVEL"
	addrEnv         = "NEWSSCOPE_ADDR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Sources  SourcesConfig  `yaml:"sources"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Cache    CacheConfig    `yaml:"cache"`
	ML       MLConfig       `yaml:"ml"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// SourcesConfig groups settings for article sources.
type SourcesConfig struct {
	Enabled []string      `yaml:"enabled"`
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
	Feeds   []FeedConfig  `yaml:"feeds"`
}

// NewsAPIConfig describes the NewsAPI endpoint and query defaults.
type NewsAPIConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	APIKey     string `yaml:"apiKey"`
	PageSize   int    `yaml:"pageSize"`
	Country    string `yaml:"country"`
	Language   string `yaml:"language"`
	SearchDays int    `yaml:"searchDays"`
}

// FeedConfig describes a single RSS/Atom feed.
type FeedConfig struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Topics []string `yaml:"topics"`
}

// AnalysisConfig tunes the orchestrator.
type AnalysisConfig struct {
	Enabled         []string      `yaml:"enabled"`
	AnalyzerTimeout time.Duration `yaml:"analyzerTimeout"`
	BatchTimeout    time.Duration `yaml:"batchTimeout"`
	MaxConcurrency  int           `yaml:"maxConcurrency"`
	SummaryTopN     int           `yaml:"summaryTopN"`
	SummaryMaxChars int           `yaml:"summaryMaxChars"`
	Cluster         ClusterConfig `yaml:"cluster"`
}

// ClusterConfig toggles batch clustering.
type ClusterConfig struct {
	Enabled bool `yaml:"enabled"`
	K       int  `yaml:"k"`
}

// CacheConfig describes the result cache.
type CacheConfig struct {
	// TTL stays at 15 minutes unless overridden for operations.
	TTL           time.Duration `yaml:"ttl"`
	Capacity      int           `yaml:"capacity"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// MLConfig describes neural-service integration parameters.
type MLConfig struct {
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
}

// OpenAIConfig defines how to contact the OpenAI API.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseUrl"`
}

// Load reads .env and YAML configuration (if present) and applies
// environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if fileCfg, err := ReadFile(path); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// ReadFile parses one YAML configuration file without defaults.
func ReadFile(path string) (Config, error) {
	var fileCfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileCfg, err
	}
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return fileCfg, err
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Sources.NewsAPI.APIKey = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(mlURLEnv); v != "" {
		c.ML.InferenceURL = v
	}

	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if len(override.Server.CORSOrigins) > 0 {
		base.Server.CORSOrigins = override.Server.CORSOrigins
	}

	if len(override.Sources.Enabled) > 0 {
		base.Sources.Enabled = override.Sources.Enabled
	}
	if override.Sources.NewsAPI.BaseURL != "" {
		base.Sources.NewsAPI.BaseURL = override.Sources.NewsAPI.BaseURL
	}
	if override.Sources.NewsAPI.APIKey != "" {
		base.Sources.NewsAPI.APIKey = override.Sources.NewsAPI.APIKey
	}
	if override.Sources.NewsAPI.PageSize > 0 {
		base.Sources.NewsAPI.PageSize = override.Sources.NewsAPI.PageSize
	}
	if override.Sources.NewsAPI.Country != "" {
		base.Sources.NewsAPI.Country = override.Sources.NewsAPI.Country
	}
	if override.Sources.NewsAPI.Language != "" {
		base.Sources.NewsAPI.Language = override.Sources.NewsAPI.Language
	}
	if override.Sources.NewsAPI.SearchDays > 0 {
		base.Sources.NewsAPI.SearchDays = override.Sources.NewsAPI.SearchDays
	}
	if len(override.Sources.Feeds) > 0 {
		base.Sources.Feeds = override.Sources.Feeds
	}

	if len(override.Analysis.Enabled) > 0 {
		base.Analysis.Enabled = override.Analysis.Enabled
	}
	if override.Analysis.AnalyzerTimeout > 0 {
		base.Analysis.AnalyzerTimeout = override.Analysis.AnalyzerTimeout
	}
	if override.Analysis.BatchTimeout > 0 {
		base.Analysis.BatchTimeout = override.Analysis.BatchTimeout
	}
	if override.Analysis.MaxConcurrency > 0 {
		base.Analysis.MaxConcurrency = override.Analysis.MaxConcurrency
	}
	if override.Analysis.SummaryTopN > 0 {
		base.Analysis.SummaryTopN = override.Analysis.SummaryTopN
	}
	if override.Analysis.SummaryMaxChars > 0 {
		base.Analysis.SummaryMaxChars = override.Analysis.SummaryMaxChars
	}
	if override.Analysis.Cluster.Enabled {
		base.Analysis.Cluster.Enabled = true
	}
	if override.Analysis.Cluster.K > 0 {
		base.Analysis.Cluster.K = override.Analysis.Cluster.K
	}

	if override.Cache.TTL > 0 {
		base.Cache.TTL = override.Cache.TTL
	}
	if override.Cache.Capacity > 0 {
		base.Cache.Capacity = override.Cache.Capacity
	}
	if override.Cache.SweepInterval > 0 {
		base.Cache.SweepInterval = override.Cache.SweepInterval
	}

	if override.ML.InferenceURL != "" {
		base.ML.InferenceURL = override.ML.InferenceURL
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}
	if override.ML.Timeout > 0 {
		base.ML.Timeout = override.ML.Timeout
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Sources: SourcesConfig{
			Enabled: []string{"newsapi"},
			NewsAPI: NewsAPIConfig{
				BaseURL:    "https://newsapi.org/v2",
				PageSize:   20,
				Country:    "us",
				Language:   "en",
				SearchDays: 30,
			},
		},
		Analysis: AnalysisConfig{
			Enabled:         []string{"summary", "sentiment", "entities", "keywords", "category"},
			AnalyzerTimeout: 8 * time.Second,
			BatchTimeout:    60 * time.Second,
			MaxConcurrency:  4,
			SummaryTopN:     3,
			SummaryMaxChars: 400,
			Cluster:         ClusterConfig{Enabled: false, K: 3},
		},
		Cache: CacheConfig{
			TTL:           15 * time.Minute,
			Capacity:      256,
			SweepInterval: 5 * time.Minute,
		},
		ML: MLConfig{Timeout: 15 * time.Second},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
	}
}
