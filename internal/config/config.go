package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/afroash/aqi-monitor/internal/logging"
)

// Refresh interval bounds for the dashboard
const (
	MinRefreshInterval = 10 * time.Second
	MaxRefreshInterval = 60 * time.Second
)

// DashboardConfig holds all configuration for the dashboard process
type DashboardConfig struct {
	Dashboard DashboardSettings `yaml:"dashboard"`
	Logging   logging.Config    `yaml:"logging"`
}

// DashboardSettings contains dashboard-specific settings
type DashboardSettings struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	APIURL          string        `yaml:"api_url"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	HistorySize     int           `yaml:"history_size"`
	UseSampleData   bool          `yaml:"use_sample_data"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// LoadDashboardConfig loads configuration from a YAML file
func LoadDashboardConfig(path string) (*DashboardConfig, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config DashboardConfig
	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	if err := config.OverrideFromEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// ApplyDefaults sets default values for any unset fields
func (c *DashboardConfig) ApplyDefaults() {
	if c.Dashboard.Host == "" {
		c.Dashboard.Host = "0.0.0.0"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8501
	}
	if c.Dashboard.APIURL == "" {
		c.Dashboard.APIURL = "http://localhost:8000"
	}
	if c.Dashboard.RefreshInterval == 0 {
		c.Dashboard.RefreshInterval = 30 * time.Second
	}
	if c.Dashboard.HistorySize == 0 {
		c.Dashboard.HistorySize = 20
	}
	applyLoggingDefaults(&c.Logging)
}

// OverrideFromEnv overrides config values from environment variables
func (c *DashboardConfig) OverrideFromEnv() error {
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DASHBOARD_PORT %q: %w", v, err)
		}
		c.Dashboard.Port = port
	}
	if v := os.Getenv("API_URL"); v != "" {
		c.Dashboard.APIURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *DashboardConfig) Validate() error {
	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	u, err := url.Parse(c.Dashboard.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.Dashboard.APIURL)
	}
	if c.Dashboard.RefreshInterval < MinRefreshInterval || c.Dashboard.RefreshInterval > MaxRefreshInterval {
		return fmt.Errorf("refresh interval must be between %v and %v", MinRefreshInterval, MaxRefreshInterval)
	}
	if c.Dashboard.HistorySize < 1 {
		return fmt.Errorf("history size must be at least 1")
	}
	return validateLogging(c.Logging)
}

// String returns a loggable summary of the configuration
func (c *DashboardConfig) String() string {
	return fmt.Sprintf("DashboardConfig{Dashboard: %+v, Logging: %+v}", c.Dashboard, c.Logging)
}
