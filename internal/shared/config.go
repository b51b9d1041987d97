package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// EnvSpotifyClientID overrides [SpotifyConfig.ClientID] when set.
	EnvSpotifyClientID = "SPOTIFY_CLIENT_ID"
	// EnvSpotifyClientSecret overrides [SpotifyConfig.ClientSecret] when set.
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Billboard   BillboardConfig   `toml:"billboard"`
	Crawl       CrawlConfig       `toml:"crawl"`
	Enrich      EnrichConfig      `toml:"enrich"`
	Checkpoint  CheckpointConfig  `toml:"checkpoint"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	BaseURL      string `toml:"base_url"`
}

// BillboardConfig contains chart scraping settings.
type BillboardConfig struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// CrawlConfig contains defaults for the weekly chart crawl.
type CrawlConfig struct {
	Chart    string `toml:"chart"`
	StepDays int    `toml:"step_days"`
}

// EnrichConfig contains track enrichment settings.
type EnrichConfig struct {
	IntervalMS int `toml:"interval_ms"`
}

// CheckpointConfig selects where checkpoints are written ("csv" or "sqlite").
type CheckpointConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Map returns the Spotify credentials in the form accepted by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"token_url":     s.TokenURL,
		"base_url":      s.BaseURL,
	}
}

// Configured reports whether both client credentials are present and not the example placeholders.
func (s SpotifyConfig) Configured() bool {
	return isSet(s.ClientID) && isSet(s.ClientSecret)
}

func isSet(v string) bool {
	return v != "" && !strings.HasPrefix(v, "your_")
}

// Interval returns the pause between enrichment lookups.
func (e EnrichConfig) Interval() time.Duration {
	if e.IntervalMS < 0 {
		return 0
	}
	return time.Duration(e.IntervalMS) * time.Millisecond
}

// Timeout returns the HTTP timeout for chart requests.
func (b BillboardConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults; Spotify credentials may be overridden from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides credentials with values from the environment, when present.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSpotifyClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvSpotifyClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
