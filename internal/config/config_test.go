package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.URL = "https://interviews.example.com"
	cfg.Monitor.MotionThreshold = 0.25

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Server.URL != "https://interviews.example.com" {
		t.Errorf("Server.URL: got %q", loaded.Server.URL)
	}
	if loaded.Monitor.MotionThreshold != 0.25 {
		t.Errorf("Monitor.MotionThreshold: got %v, want 0.25", loaded.Monitor.MotionThreshold)
	}
}

func TestDefaultConfigMonitorSettings(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Monitor.CadenceMs != 2000 {
		t.Errorf("default CadenceMs: got %d, want 2000", cfg.Monitor.CadenceMs)
	}
	if cfg.Monitor.BaselineShots != 3 {
		t.Errorf("default BaselineShots: got %d, want 3", cfg.Monitor.BaselineShots)
	}
	if cfg.Monitor.UploadFailureLimit != 5 || cfg.Monitor.UploadRetrySeconds != 30 {
		t.Errorf("default upload breaker tunables: got %d/%d, want 5/30",
			cfg.Monitor.UploadFailureLimit, cfg.Monitor.UploadRetrySeconds)
	}
	if cfg.Session.MaxQuestions != 8 {
		t.Errorf("default MaxQuestions: got %d, want 8", cfg.Session.MaxQuestions)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed without a config file: %v", err)
	}
	if cfg.Server.URL != DefaultConfig().Server.URL {
		t.Errorf("Load without file should return defaults, got %q", cfg.Server.URL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "http://from-file:8000"
	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	t.Setenv("VIGIL_SERVER_URL", "http://from-env:9000")
	t.Setenv("VIGIL_AUTH_TOKEN", "env-token")

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if loaded.Server.URL != "http://from-env:9000" {
		t.Errorf("env should override file URL, got %q", loaded.Server.URL)
	}
	if loaded.Server.AuthToken != "env-token" {
		t.Errorf("env should supply token, got %q", loaded.Server.AuthToken)
	}
}

func TestDotEnvLoaded(t *testing.T) {
	tmpDir := t.TempDir()
	dotenv := "VIGIL_SERVER_URL=http://from-dotenv:7000\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	// godotenv only fills unset variables; make sure this one is unset and
	// restored afterwards.
	t.Setenv("VIGIL_SERVER_URL", "")
	os.Unsetenv("VIGIL_SERVER_URL")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://from-dotenv:7000" {
		t.Errorf(".env should override default URL, got %q", cfg.Server.URL)
	}
}
