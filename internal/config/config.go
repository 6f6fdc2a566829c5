package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Engines       EnginesConfig       `yaml:"engines" mapstructure:"engines"`
	SearchConsole SearchConsoleConfig `yaml:"search_console" mapstructure:"search_console"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Pricing       PricingConfig       `yaml:"pricing" mapstructure:"pricing"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EnginesConfig enumerates the answer-engine panel. An engine with an empty
// key is absent from the available set for a run.
type EnginesConfig struct {
	OpenAI     EngineConfig `yaml:"openai" mapstructure:"openai"`
	Anthropic  EngineConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity EngineConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Gemini     EngineConfig `yaml:"gemini" mapstructure:"gemini"`
	DeepSeek   EngineConfig `yaml:"deepseek" mapstructure:"deepseek"`
}

// EngineConfig holds one engine's credential and endpoint settings.
type EngineConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// SearchConsoleConfig holds the query-performance source settings.
type SearchConsoleConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Months  int    `yaml:"months" mapstructure:"months"`
}

// PipelineConfig configures batching and engine call bounds.
type PipelineConfig struct {
	BatchSize         int `yaml:"batch_size" mapstructure:"batch_size"`
	MaxQueries        int `yaml:"max_queries" mapstructure:"max_queries"`
	EngineTimeoutSecs int `yaml:"engine_timeout_secs" mapstructure:"engine_timeout_secs"`
}

// PricingConfig holds per-engine token pricing (USD per million tokens).
type PricingConfig struct {
	Engines map[string]EnginePricing `yaml:"engines" mapstructure:"engines"`
}

// EnginePricing is one engine's input/output token rates.
type EnginePricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VISIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("pipeline.batch_size", 10)
	v.SetDefault("pipeline.max_queries", 200)
	v.SetDefault("pipeline.engine_timeout_secs", 60)
	v.SetDefault("store.database_url", "")
	v.SetDefault("engines.openai.key", "")
	v.SetDefault("engines.anthropic.key", "")
	v.SetDefault("engines.perplexity.key", "")
	v.SetDefault("engines.gemini.key", "")
	v.SetDefault("engines.deepseek.key", "")
	v.SetDefault("search_console.token", "")
	v.SetDefault("engines.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("engines.openai.model", "gpt-4o")
	v.SetDefault("engines.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("engines.perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("engines.perplexity.model", "sonar-pro")
	v.SetDefault("engines.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("engines.gemini.model", "gemini-2.0-flash")
	v.SetDefault("engines.deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("engines.deepseek.model", "deepseek-chat")
	v.SetDefault("search_console.base_url", "https://www.googleapis.com/webmasters/v3")
	v.SetDefault("search_console.months", 12)
	v.SetDefault("pricing.engines.openai.input", 2.50)
	v.SetDefault("pricing.engines.openai.output", 10.00)
	v.SetDefault("pricing.engines.anthropic.input", 3.00)
	v.SetDefault("pricing.engines.anthropic.output", 15.00)
	v.SetDefault("pricing.engines.perplexity.input", 3.00)
	v.SetDefault("pricing.engines.perplexity.output", 15.00)
	v.SetDefault("pricing.engines.gemini.input", 0.10)
	v.SetDefault("pricing.engines.gemini.output", 0.40)
	v.SetDefault("pricing.engines.deepseek.input", 0.27)
	v.SetDefault("pricing.engines.deepseek.output", 1.10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
