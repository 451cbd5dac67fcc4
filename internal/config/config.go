// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Blob   BlobConfig   `yaml:"blob" mapstructure:"blob"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ScrapeConfig configures the quote site scraper.
type ScrapeConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	MaxPages    int    `yaml:"max_pages" mapstructure:"max_pages"`
	PageDelayMS int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BatchConfig holds the generation batch service settings.
type BatchConfig struct {
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	Key             string `yaml:"key" mapstructure:"key"`
	APIVersion      string `yaml:"api_version" mapstructure:"api_version"`
	Model           string `yaml:"model" mapstructure:"model"`
	FileExpireSecs  int64  `yaml:"file_expire_secs" mapstructure:"file_expire_secs"`
	CompletionHours int    `yaml:"completion_hours" mapstructure:"completion_hours"`
}

// BlobConfig holds blob storage credentials and the target container.
type BlobConfig struct {
	AccountName string `yaml:"account_name" mapstructure:"account_name"`
	AccountKey  string `yaml:"account_key" mapstructure:"account_key"`
	Container   string `yaml:"container" mapstructure:"container"`
}

// StoreConfig configures the local run-tracking database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP surface.
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
	v.SetEnvPrefix("QUOTEPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv can surface them
	// through Unmarshal without a config file.
	v.SetDefault("scrape.base_url", "https://quotefancy.com")
	v.SetDefault("scrape.max_pages", 10)
	v.SetDefault("scrape.page_delay_ms", 1000)
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("batch.endpoint", "")
	v.SetDefault("batch.key", "")
	v.SetDefault("batch.api_version", "2025-03-01-preview")
	v.SetDefault("batch.model", "gpt-4o-global-batch")
	v.SetDefault("batch.file_expire_secs", 1209600)
	v.SetDefault("batch.completion_hours", 24)
	v.SetDefault("blob.account_name", "")
	v.SetDefault("blob.account_key", "")
	v.SetDefault("blob.container", "suvichaarbatch1")
	v.SetDefault("store.path", "quotepipe.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
