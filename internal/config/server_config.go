package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/afroash/aqi-monitor/internal/logging"
	"github.com/afroash/aqi-monitor/internal/models"
)

// AppConfig holds configuration for the prediction API server
type AppConfig struct {
	Server  ServerSettings `yaml:"server"`
	Model   ModelSettings  `yaml:"model"`
	Source  SourceSettings `yaml:"source"`
	Logging logging.Config `yaml:"logging"`
}

// ServerSettings contains HTTP server configuration
type ServerSettings struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// ModelSettings points at the trained model artifact
type ModelSettings struct {
	Path string `yaml:"path"`
}

// SourceSettings configures the live pollutant provider and the location it
// is queried for.
type SourceSettings struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Timezone  string        `yaml:"timezone"`
	Location  string        `yaml:"location"`
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
}

// LoadAppConfig loads server configuration from a YAML file
func LoadAppConfig(path string) (*AppConfig, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config AppConfig
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

// ApplyDefaults sets default values for server config
func (ac *AppConfig) ApplyDefaults() {
	if ac.Server.Port == 0 {
		ac.Server.Port = 8000
	}
	if ac.Server.Host == "" {
		ac.Server.Host = "0.0.0.0"
	}
	if ac.Server.ReadTimeout == 0 {
		ac.Server.ReadTimeout = 15 * time.Second
	}
	// Live predictions wait on the provider, so this must exceed Source.Timeout.
	if ac.Server.WriteTimeout == 0 {
		ac.Server.WriteTimeout = 30 * time.Second
	}
	if len(ac.Server.AllowedOrigins) == 0 {
		ac.Server.AllowedOrigins = []string{"*"}
	}
	if ac.Model.Path == "" {
		ac.Model.Path = "assets/aqi_model.yaml"
	}
	if ac.Source.Timeout == 0 {
		ac.Source.Timeout = 10 * time.Second
	}
	if ac.Source.Timezone == "" {
		ac.Source.Timezone = "auto"
	}
	if ac.Source.Location == "" && ac.Source.Latitude == 0 && ac.Source.Longitude == 0 {
		loc := models.DefaultLocation()
		ac.Source.Location = loc.Name
		ac.Source.Latitude = loc.Latitude
		ac.Source.Longitude = loc.Longitude
	}
	applyLoggingDefaults(&ac.Logging)
}

// OverrideFromEnv overrides config from environment variables
func (ac *AppConfig) OverrideFromEnv() error {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		ac.Server.Port = port
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		ac.Server.Host = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		ac.Model.Path = v
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		ac.Source.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		ac.Logging.Level = v
	}
	return nil
}

// Validate checks if server configuration is valid
func (ac *AppConfig) Validate() error {
	if ac.Server.Port < 1 || ac.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if ac.Model.Path == "" {
		return errors.New("model path is required")
	}
	if ac.Source.Timeout < time.Second {
		return fmt.Errorf("source timeout must be at least 1 second")
	}
	if !ac.SourceLocation().IsValid() {
		return fmt.Errorf("source location %q has invalid coordinates (%.4f, %.4f)",
			ac.Source.Location, ac.Source.Latitude, ac.Source.Longitude)
	}
	return validateLogging(ac.Logging)
}

// SourceLocation returns the configured location for live predictions
func (ac *AppConfig) SourceLocation() models.Location {
	return models.Location{
		Name:      ac.Source.Location,
		Latitude:  ac.Source.Latitude,
		Longitude: ac.Source.Longitude,
	}
}

// String returns a loggable summary of the configuration
func (ac *AppConfig) String() string {
	return fmt.Sprintf("AppConfig{Server: %+v, Model: %+v, Source: %+v, Logging: %+v}",
		ac.Server,
		ac.Model,
		ac.Source,
		ac.Logging,
	)
}

func applyLoggingDefaults(l *logging.Config) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
}

func validateLogging(l logging.Config) error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}
	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be json or text, got %q", l.Format)
	}
	return nil
}
