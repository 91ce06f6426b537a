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
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Acquire AcquireConfig `yaml:"acquire" mapstructure:"acquire"`
	Stealth StealthConfig `yaml:"stealth" mapstructure:"stealth"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// EngineConfig configures the orchestrator.
type EngineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
	// EscalationThreshold is the fraction of blocked results in the basic
	// pass above which the run escalates to stealth.
	EscalationThreshold float64 `yaml:"escalation_threshold" mapstructure:"escalation_threshold"`
	// RunTimeoutSecs bounds one whole run, both passes included.
	RunTimeoutSecs int `yaml:"run_timeout_secs" mapstructure:"run_timeout_secs"`
}

// AcquireConfig configures the basic HTTP acquisition path.
type AcquireConfig struct {
	TimeoutSecs       int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyKB         int `yaml:"max_body_kb" mapstructure:"max_body_kb"`
	MaxRetries        int `yaml:"max_retries" mapstructure:"max_retries"`
	PolitenessDelayMs int `yaml:"politeness_delay_ms" mapstructure:"politeness_delay_ms"`
}

// StealthConfig configures the headless rendering path.
type StealthConfig struct {
	RenderTimeoutSecs int `yaml:"render_timeout_secs" mapstructure:"render_timeout_secs"`
	PolitenessDelayMs int `yaml:"politeness_delay_ms" mapstructure:"politeness_delay_ms"`
	MaxContexts       int `yaml:"max_contexts" mapstructure:"max_contexts"`
	// HardDomains always get stealth acquisition regardless of the basic
	// pass outcome.
	HardDomains []string `yaml:"hard_domains" mapstructure:"hard_domains"`
	// BreakerThreshold consecutive renderer failures open the breaker.
	BreakerThreshold    int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// CrawlConfig bounds link-following.
type CrawlConfig struct {
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages"`
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
	// EscalatedMaxPages replaces MaxPages for the escalated pass.
	EscalatedMaxPages int `yaml:"escalated_max_pages" mapstructure:"escalated_max_pages"`
}

// CacheConfig configures the optional result cache.
type CacheConfig struct {
	// Driver is "sqlite" or "postgres"; empty disables caching.
	Driver   string `yaml:"driver" mapstructure:"driver"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
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
	v.SetEnvPrefix("SCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.escalation_threshold", 0.3)
	v.SetDefault("engine.run_timeout_secs", 300)
	v.SetDefault("acquire.timeout_secs", 15)
	v.SetDefault("acquire.max_body_kb", 512)
	v.SetDefault("acquire.max_retries", 2)
	v.SetDefault("acquire.politeness_delay_ms", 250)
	v.SetDefault("stealth.render_timeout_secs", 30)
	v.SetDefault("stealth.politeness_delay_ms", 1000)
	v.SetDefault("stealth.max_contexts", 3)
	v.SetDefault("stealth.breaker_threshold", 3)
	v.SetDefault("stealth.breaker_cooldown_secs", 60)
	v.SetDefault("stealth.hard_domains", []string{
		"linkedin.com",
		"glassdoor.com",
		"indeed.com",
		"zoominfo.com",
	})
	v.SetDefault("crawl.max_pages", 10)
	v.SetDefault("crawl.max_depth", 1)
	v.SetDefault("crawl.escalated_max_pages", 25)
	v.SetDefault("cache.driver", "")
	v.SetDefault("cache.ttl_hours", 24)

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
