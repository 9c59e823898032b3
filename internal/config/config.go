// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuthConfig struct {
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	// Loaded from environment
	SigningKey string `yaml:"-"`
}

// RateRule caps how many calls one user may make to an operation per window.
type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type RateLimitConfig struct {
	Operations map[string]RateRule `yaml:"operations"`
	Public     struct {
		PerMinute         int  `yaml:"per_minute"`
		Burst             int  `yaml:"burst"`
		TrustForwardedFor bool `yaml:"trust_forwarded_for"`
	} `yaml:"public"`
}

type SchedulerConfig struct {
	IPPruneCron    string        `yaml:"ip_prune_cron"`
	IPIdleTimeout  time.Duration `yaml:"ip_idle_timeout"`
	DBOptimizeCron string        `yaml:"db_optimize_cron"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database   DatabaseConfig  `yaml:"database"`
	Auth       AuthConfig      `yaml:"auth"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// DefaultOperationLimits are the per-user quotas applied to mutating theme
// procedures when the config file does not override them.
func DefaultOperationLimits() map[string]RateRule {
	return map[string]RateRule{
		"themes.create":       {Limit: 10, Window: time.Hour},
		"themes.update":       {Limit: 30, Window: time.Hour},
		"themes.delete":       {Limit: 20, Window: time.Hour},
		"themes.togglePublic": {Limit: 20, Window: time.Hour},
		"themes.copyPublic":   {Limit: 10, Window: time.Hour},
	}
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Auth.SigningKey = os.Getenv("AUTH_SIGNING_KEY")
	if cfg.Auth.SigningKey == "" {
		cfg.Auth.SigningKey = cfg.App.SecretKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes yaml configuration and fills in defaults. It does not read
// the environment and does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.App.Name
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	defaults := DefaultOperationLimits()
	if c.RateLimits.Operations == nil {
		c.RateLimits.Operations = defaults
	} else {
		for op, rule := range defaults {
			if _, ok := c.RateLimits.Operations[op]; !ok {
				c.RateLimits.Operations[op] = rule
			}
		}
	}
	if c.RateLimits.Public.PerMinute == 0 {
		c.RateLimits.Public.PerMinute = 60
	}
	if c.RateLimits.Public.Burst == 0 {
		c.RateLimits.Public.Burst = 20
	}

	if c.Scheduler.IPPruneCron == "" {
		c.Scheduler.IPPruneCron = "*/5 * * * *"
	}
	if c.Scheduler.IPIdleTimeout == 0 {
		c.Scheduler.IPIdleTimeout = 10 * time.Minute
	}
	if c.Scheduler.DBOptimizeCron == "" {
		c.Scheduler.DBOptimizeCron = "17 3 * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth signing key is required (AUTH_SIGNING_KEY or APP_SECRET_KEY)")
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth token_ttl must not be negative")
	}

	for op, rule := range c.RateLimits.Operations {
		if rule.Limit <= 0 {
			return fmt.Errorf("rate limit for %s must be positive", op)
		}
		if rule.Window <= 0 {
			return fmt.Errorf("rate limit window for %s must be positive", op)
		}
	}
	if c.RateLimits.Public.PerMinute < 0 || c.RateLimits.Public.Burst < 0 {
		return fmt.Errorf("public rate limits must not be negative")
	}

	for name, expr := range map[string]string{
		"ip_prune_cron":    c.Scheduler.IPPruneCron,
		"db_optimize_cron": c.Scheduler.DBOptimizeCron,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("scheduler %s %q is invalid: %w", name, expr, err)
		}
	}

	return nil
}
