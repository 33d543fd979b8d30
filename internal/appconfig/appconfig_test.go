// internal/appconfig/appconfig_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad verifies that a valid configuration file loads without error and
// that defaults are applied, while invalid JSON, empty host lists, and
// nonexistent files produce an appropriate error.
func TestLoad(t *testing.T) {
	validConfig := `{
        "hosts": [
            {
                "name": "Local Ollama",
                "url": "http://localhost:11434",
                "type": "ollama",
                "model": "llama3.2"
            }
        ]
    }`
	tmpfile, err := os.CreateTemp("", "config.json")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())
	if _, err := tmpfile.Write([]byte(validConfig)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if len(cfg.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(cfg.Hosts))
	}
	if cfg.TimeoutSeconds != 120 {
		t.Fatalf("expected default timeout of 120 seconds, got %d", cfg.TimeoutSeconds)
	}
	if cfg.RequestTimeout() != 120*time.Second {
		t.Fatalf("expected default request timeout of 120s, got %v", cfg.RequestTimeout())
	}
	if cfg.MaxSearchResults() != 4 {
		t.Fatalf("expected default max results of 4, got %d", cfg.MaxSearchResults())
	}
	if cfg.ContextBudgetChars() != 6000 {
		t.Fatalf("expected default context budget of 6000, got %d", cfg.ContextBudgetChars())
	}
	if cfg.SearchBaseURL() != "https://export.arxiv.org/api/query" {
		t.Fatalf("unexpected default search URL: %s", cfg.SearchBaseURL())
	}

	invalidJSON := `{ "hosts": [`
	tmpfile2, err := os.CreateTemp("", "config.json")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile2.Name())
	if _, err := tmpfile2.Write([]byte(invalidJSON)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile2.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpfile2.Name()); err == nil {
		t.Fatal("Load() with invalid JSON should have failed")
	}

	noHosts := `{ "hosts": [] }`
	tmpfile3 := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmpfile3, []byte(noHosts), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpfile3); err == nil {
		t.Fatal("Load() with no hosts should have failed")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load() with nonexistent file should have failed")
	}
}

// TestAccessorOverrides verifies that explicit config values win over defaults.
func TestAccessorOverrides(t *testing.T) {
	cfg := Config{
		TimeoutSeconds: 30,
		MaxResults:     8,
		ContextBudget:  1200,
		SearchURL:      "http://localhost:9999/api/query",
		LogFile:        "logs/session.log",
		TranscriptPath: " transcripts/s1.json ",
	}

	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.MaxSearchResults() != 8 {
		t.Fatalf("expected 8 max results, got %d", cfg.MaxSearchResults())
	}
	if cfg.ContextBudgetChars() != 1200 {
		t.Fatalf("expected 1200 budget, got %d", cfg.ContextBudgetChars())
	}
	if cfg.SearchBaseURL() != "http://localhost:9999/api/query" {
		t.Fatalf("unexpected search URL: %s", cfg.SearchBaseURL())
	}
	if cfg.LogFilePath() != "logs/session.log" {
		t.Fatalf("unexpected log path: %s", cfg.LogFilePath())
	}
	if cfg.TranscriptFilePath() != "transcripts/s1.json" {
		t.Fatalf("expected trimmed transcript path, got %q", cfg.TranscriptFilePath())
	}
}
