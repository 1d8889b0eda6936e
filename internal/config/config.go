package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ProsperUsername    string        `mapstructure:"prosper_username"`
	ProsperPassword    string        `mapstructure:"prosper_password" json:"-"`
	ProsperBaseURL     string        `mapstructure:"prosper_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	StrategyFile          string        `mapstructure:"strategy_file"`
	PublishersFile        string        `mapstructure:"publishers_file"`
	InvestIntervalSeconds int64         `mapstructure:"invest_interval"`
	InvestInterval        time.Duration `mapstructure:"-"`
	DryRun                bool          `mapstructure:"dry_run"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "prosper-autoinvest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("prosper_username", "")
	v.SetDefault("prosper_password", "")
	v.SetDefault("prosper_base_url", "https://api.prosper.com/v1/")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("strategy_file", "./configs/strategy.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("invest_interval", 300) // seconds
	v.SetDefault("dry_run", true)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/ledger.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates numeric settings and derives durations.
func (cfg *Config) finalize() error {
	cfg.ProsperUsername = strings.TrimSpace(cfg.ProsperUsername)
	cfg.ProsperBaseURL = strings.TrimSpace(cfg.ProsperBaseURL)

	if cfg.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.InvestIntervalSeconds <= 0 {
		return fmt.Errorf("invalid invest_interval (must be positive seconds)")
	}
	cfg.InvestInterval = time.Duration(cfg.InvestIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}

// Redacted returns a copy safe to log.
func (cfg Config) Redacted() Config {
	if cfg.ProsperPassword != "" {
		cfg.ProsperPassword = "********"
	}
	return cfg
}
