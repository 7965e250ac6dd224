// Package config handles reading and writing .vigil/config.yaml, with
// environment overrides for server settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .vigil/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
}

// SessionConfig controls interview pacing for server-generated sessions.
type SessionConfig struct {
	PerQuestionSeconds int `yaml:"per_question_seconds"`
	TotalTimeSeconds   int `yaml:"total_time_seconds"`
	MaxQuestions       int `yaml:"max_questions"`
}

// MonitorConfig controls camera sampling and anomaly detection.
type MonitorConfig struct {
	CadenceMs           int     `yaml:"cadence_ms"`
	MotionThreshold     float64 `yaml:"motion_threshold"`
	PeriodicSaveSeconds int     `yaml:"periodic_save_seconds"`
	BaselineShots       int     `yaml:"baseline_shots"`
	UploadFailureLimit  int     `yaml:"upload_failure_limit"`
	UploadRetrySeconds  int     `yaml:"upload_retry_seconds"`
}

// RetentionConfig controls local snapshot pruning.
type RetentionConfig struct {
	MaxAgeDays   int `yaml:"max_age_days"`
	KeepSessions int `yaml:"keep_sessions"`
}

// configFileName is the path relative to the state root.
const configDir = ".vigil"
const configFile = "config.yaml"

// Env variable names that override file settings. A .env file in the state
// root is loaded first, then the process environment wins.
const (
	envServerURL = "VIGIL_SERVER_URL"
	envAuthToken = "VIGIL_AUTH_TOKEN"
)

// Dir returns the state directory inside dir.
func Dir(dir string) string {
	return filepath.Join(dir, configDir)
}

// ReadConfig reads .vigil/config.yaml from the given root directory and
// applies environment overrides. dir is the state root (not .vigil/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(dir, &cfg)
	return &cfg, nil
}

// WriteConfig writes cfg to .vigil/config.yaml in the given root directory.
// Creates the .vigil/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load reads the config, falling back to defaults (plus env overrides) when
// no file exists yet.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
		applyEnv(dir, cfg)
		return cfg, nil
	}
	return nil, err
}

func applyEnv(dir string, cfg *Config) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	if v := os.Getenv(envServerURL); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv(envAuthToken); v != "" {
		cfg.Server.AuthToken = v
	}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			URL: "http://localhost:8000",
		},
		Session: SessionConfig{
			PerQuestionSeconds: 45,
			TotalTimeSeconds:   1200,
			MaxQuestions:       8,
		},
		Monitor: MonitorConfig{
			CadenceMs:           2000,
			MotionThreshold:     0.18,
			PeriodicSaveSeconds: 10,
			BaselineShots:       3,
			UploadFailureLimit:  5,
			UploadRetrySeconds:  30,
		},
		Retention: RetentionConfig{
			MaxAgeDays:   30,
			KeepSessions: 20,
		},
	}
}
