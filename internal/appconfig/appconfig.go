// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for upstream HTTP requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultMaxResults is the number of papers fetched per query when the config omits the value.
	defaultMaxResults = 4
	// defaultContextBudget is the character budget for assembled abstract context.
	defaultContextBudget = 6000
	// defaultSearchBaseURL is the arXiv Atom export endpoint.
	defaultSearchBaseURL = "https://export.arxiv.org/api/query"
)

// Config represents the top-level application configuration.
type Config struct {
	Hosts            []Host `json:"hosts"`
	Debug            bool   `json:"debug"`
	ToolMode         bool   `json:"toolMode"`
	DisableStreaming bool   `json:"disableStreaming"`
	TimeoutSeconds   int    `json:"timeout,omitempty"`
	MaxResults       int    `json:"maxResults,omitempty"`
	ContextBudget    int    `json:"contextBudget,omitempty"`
	SearchURL        string `json:"searchUrl,omitempty"`
	TranscriptPath   string `json:"transcript,omitempty"`
	LogFile          string `json:"logFile,omitempty"`
	ConfigPath       string `json:"-"`
}

// Host represents a single host that can serve language model completions.
type Host struct {
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Type         string     `json:"type"`
	Model        string     `json:"model"`
	SystemPrompt string     `json:"systemprompt,omitempty"`
	Parameters   Parameters `json:"parameters"`
}

// Parameters defines the sampling parameters forwarded to a language model.
type Parameters struct {
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
}

// RequestTimeout returns the timeout duration for upstream requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxSearchResults returns the configured paper cap per retrieval, applying the default if unset.
func (c Config) MaxSearchResults() int {
	if c.MaxResults <= 0 {
		return defaultMaxResults
	}
	return c.MaxResults
}

// ContextBudgetChars returns the assembled-context character budget, applying the default if unset.
func (c Config) ContextBudgetChars() int {
	if c.ContextBudget <= 0 {
		return defaultContextBudget
	}
	return c.ContextBudget
}

// SearchBaseURL returns the paper search endpoint, applying the arXiv default if unset.
func (c Config) SearchBaseURL() string {
	if url := strings.TrimSpace(c.SearchURL); url != "" {
		return url
	}
	return defaultSearchBaseURL
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "arxa.log"
}

// TranscriptFilePath returns the session transcript path. An empty string
// means the session is held in memory only and discarded on exit.
func (c Config) TranscriptFilePath() string {
	return strings.TrimSpace(c.TranscriptPath)
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if len(config.Hosts) == 0 {
			return Config{}, errors.New("config must contain at least one host")
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
