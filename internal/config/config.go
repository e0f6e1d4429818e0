package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel string `yaml:"log_level"`

	DBDriver string `yaml:"db_driver"`
	DBConn   string `yaml:"db_conn"`

	RailURL     string        `yaml:"rail_url"`
	RailSecret  string        `yaml:"rail_secret"`
	RailTimeout time.Duration `yaml:"rail_timeout"`

	// RepaymentSchedule is a standard five-field cron spec
	RepaymentSchedule string         `yaml:"repayment_schedule"`
	Timezone          string         `yaml:"timezone"`
	Location          *time.Location `yaml:"-"`

	RedisURL    string        `yaml:"redis_url"`
	RunGuardTTL time.Duration `yaml:"run_guard_ttl"`

	OpsAddr string `yaml:"ops_addr"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     string `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_username"`
	SMTPPassword string `yaml:"smtp_password"`
	SenderEmail  string `yaml:"sender_email"`
	OpsEmail     string `yaml:"ops_email"`

	RailSimAddr         string  `yaml:"railsim_addr"`
	RailSimFailRate     float64 `yaml:"railsim_fail_rate"`
	RailSimFailAccounts []int64 `yaml:"railsim_fail_accounts"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		LogLevel:          "INFO",
		DBDriver:          "sqlite3",
		DBConn:            "bank.db",
		RailURL:           "http://localhost:8081",
		RailSecret:        "secret",
		RailTimeout:       10 * time.Second,
		RepaymentSchedule: "0 9 * * *",
		Timezone:          "UTC",
		RunGuardTTL:       36 * time.Hour,
		OpsAddr:           ":9090",
		SMTPPort:          "587",
		RailSimAddr:       ":8081",
	}
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	return Load("")
}

// Load reads the optional YAML file at path and then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBConn = getEnv("DB_CONN", cfg.DBConn)
	cfg.RailURL = getEnv("RAIL_URL", cfg.RailURL)
	cfg.RailSecret = getEnv("RAIL_SECRET", cfg.RailSecret)
	cfg.RepaymentSchedule = getEnv("REPAYMENT_SCHEDULE", cfg.RepaymentSchedule)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.OpsAddr = getEnv("OPS_ADDR", cfg.OpsAddr)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SenderEmail = getEnv("SENDER_EMAIL", cfg.SenderEmail)
	cfg.OpsEmail = getEnv("OPS_EMAIL", cfg.OpsEmail)
	cfg.RailSimAddr = getEnv("RAILSIM_ADDR", cfg.RailSimAddr)

	var err error
	if cfg.RailTimeout, err = getDuration("RAIL_TIMEOUT", cfg.RailTimeout); err != nil {
		return nil, err
	}
	if cfg.RunGuardTTL, err = getDuration("RUN_GUARD_TTL", cfg.RunGuardTTL); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv("RAILSIM_FAIL_RATE"); ok {
		if cfg.RailSimFailRate, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid RAILSIM_FAIL_RATE: %w", err)
		}
	}
	if v, ok := os.LookupEnv("RAILSIM_FAIL_ACCOUNTS"); ok {
		if cfg.RailSimFailAccounts, err = parseIDs(v); err != nil {
			return nil, fmt.Errorf("invalid RAILSIM_FAIL_ACCOUNTS: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite3" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", c.DBDriver)
	}
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.RailURL == "" {
		return fmt.Errorf("RAIL_URL is required")
	}
	if c.RailSecret == "" {
		return fmt.Errorf("RAIL_SECRET is required")
	}
	if c.RepaymentSchedule == "" {
		return fmt.Errorf("REPAYMENT_SCHEDULE is required")
	}
	if c.RailSimFailRate < 0 || c.RailSimFailRate > 1 {
		return fmt.Errorf("RAILSIM_FAIL_RATE must be between 0 and 1")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// MailEnabled reports whether run summaries can be emailed
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SenderEmail != "" && c.OpsEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
