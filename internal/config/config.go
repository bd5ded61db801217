// Package config loads latewatch settings from LATEWATCH_* environment
// variables, optionally layered over a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all latewatch configuration.
type Config struct {
	Connector    ConnectorConfig `yaml:"connector"`
	Ingest       IngestConfig    `yaml:"ingest"`
	Output       OutputConfig    `yaml:"output"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	Timeout      time.Duration   `yaml:"timeout"`
	LogLevel     string          `yaml:"log_level"`
}

// ConnectorConfig selects and configures the feed source.
type ConnectorConfig struct {
	Provider string            `yaml:"provider"`
	APIKey   string            `yaml:"api_key"`
	Endpoint string            `yaml:"endpoint"`
	Extra    map[string]string `yaml:"extra"`
	// Sources lists additional script IDs fetched alongside the primary one.
	Sources []string `yaml:"sources"`
}

// IngestConfig controls date arithmetic and default labels.
type IngestConfig struct {
	TZ     string `yaml:"tz"`
	Locale string `yaml:"locale"`
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Targets    []string `yaml:"targets"`
	File       string   `yaml:"file"`
	MaxSize    int64    `yaml:"max_size"`
	WebhookURL string   `yaml:"webhook_url"`
	Pretty     bool     `yaml:"pretty"`
	Verbosity  string   `yaml:"verbosity"`
}

var (
	providers   = []string{"appsscript", "file", "mock"}
	targets     = []string{"stdout", "file", "webhook"}
	locales     = []string{"ms", "en"}
	verbosities = []string{"minimal", "standard"}
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Connector:    ConnectorConfig{Provider: "appsscript"},
		Ingest:       IngestConfig{TZ: "Local", Locale: "ms"},
		Output:       OutputConfig{Targets: []string{"stdout"}, Verbosity: "standard"},
		PollInterval: time.Minute,
		Timeout:      30 * time.Second,
		LogLevel:     "info",
	}
}

// Load builds a Config from defaults, then the YAML file named by
// LATEWATCH_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("LATEWATCH_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.mergeEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.Connector.Provider = getenv("LATEWATCH_CONNECTOR", c.Connector.Provider)
	c.Connector.APIKey = getenv("LATEWATCH_API_KEY", c.Connector.APIKey)
	c.Connector.Endpoint = getenv("LATEWATCH_ENDPOINT", c.Connector.Endpoint)
	c.Connector.Sources = getenvList("LATEWATCH_SOURCES", c.Connector.Sources)
	c.Connector.Extra = loadConnectorExtra(c.Connector.Extra)

	c.Ingest.TZ = getenv("LATEWATCH_TZ", c.Ingest.TZ)
	c.Ingest.Locale = getenv("LATEWATCH_LOCALE", c.Ingest.Locale)

	c.Output.Targets = getenvList("LATEWATCH_OUTPUT", c.Output.Targets)
	c.Output.File = getenv("LATEWATCH_OUTPUT_FILE", c.Output.File)
	c.Output.MaxSize = getenvInt64("LATEWATCH_OUTPUT_MAX_SIZE", c.Output.MaxSize)
	c.Output.WebhookURL = getenv("LATEWATCH_WEBHOOK_URL", c.Output.WebhookURL)
	c.Output.Pretty = getenvBool("LATEWATCH_OUTPUT_PRETTY", c.Output.Pretty)
	c.Output.Verbosity = getenv("LATEWATCH_VERBOSITY", c.Output.Verbosity)

	c.PollInterval = getenvDuration("LATEWATCH_POLL_INTERVAL", c.PollInterval)
	c.Timeout = getenvDuration("LATEWATCH_TIMEOUT", c.Timeout)
	c.LogLevel = getenv("LATEWATCH_LOG_LEVEL", c.LogLevel)
}

// loadConnectorExtra overlays provider-specific env vars on base.
func loadConnectorExtra(base map[string]string) map[string]string {
	vars := []struct {
		envVar   string
		extraKey string
	}{
		{"LATEWATCH_SCRIPT_ID", "script_id"},
		{"LATEWATCH_SHEET", "sheet"},
		{"LATEWATCH_FILE", "path"},
		{"LATEWATCH_CONTENT_TYPE", "content_type"},
		{"LATEWATCH_MOCK_ROWS", "rows"},
		{"LATEWATCH_MOCK_SEED", "seed"},
	}

	m := base
	for _, v := range vars {
		if val := os.Getenv(v.envVar); val != "" {
			if m == nil {
				m = make(map[string]string)
			}
			m[v.extraKey] = val
		}
	}
	return m
}

// Location resolves Ingest.TZ. Empty and "Local" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	switch c.Ingest.TZ {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Ingest.TZ)
	if err != nil {
		return nil, fmt.Errorf("config: tz %q: %w", c.Ingest.TZ, err)
	}
	return loc, nil
}

// SourceConfigs expands the primary connector plus every extra source into
// one ConnectorConfig each. Extra sources share everything but script_id.
func (c Config) SourceConfigs() []ConnectorConfig {
	out := []ConnectorConfig{c.Connector}
	for _, id := range c.Connector.Sources {
		src := c.Connector
		src.Sources = nil
		src.Extra = make(map[string]string, len(c.Connector.Extra)+1)
		for k, v := range c.Connector.Extra {
			src.Extra[k] = v
		}
		src.Extra["script_id"] = id
		out = append(out, src)
	}
	return out
}

// HasTarget reports whether name is among the output targets.
func (c Config) HasTarget(name string) bool {
	return slices.Contains(c.Output.Targets, name)
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if !slices.Contains(providers, c.Connector.Provider) {
		errs = append(errs, fmt.Errorf("unknown connector %q (want one of %s)", c.Connector.Provider, strings.Join(providers, ", ")))
	}
	switch c.Connector.Provider {
	case "appsscript":
		if c.Connector.Extra["script_id"] == "" {
			errs = append(errs, errors.New("appsscript connector requires LATEWATCH_SCRIPT_ID"))
		}
	case "file":
		if c.Connector.Extra["path"] == "" && c.Connector.Endpoint == "" {
			errs = append(errs, errors.New("file connector requires LATEWATCH_FILE"))
		}
	}
	if len(c.Connector.Sources) > 0 && c.Connector.Provider != "appsscript" {
		errs = append(errs, errors.New("extra sources are only supported by the appsscript connector"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(locales, c.Ingest.Locale) {
		errs = append(errs, fmt.Errorf("unknown locale %q (want ms or en)", c.Ingest.Locale))
	}

	if len(c.Output.Targets) == 0 {
		errs = append(errs, errors.New("at least one output target is required"))
	}
	for _, t := range c.Output.Targets {
		if !slices.Contains(targets, t) {
			errs = append(errs, fmt.Errorf("unknown output %q (want one of %s)", t, strings.Join(targets, ", ")))
		}
	}
	if c.HasTarget("file") && c.Output.File == "" {
		errs = append(errs, errors.New("file output requires LATEWATCH_OUTPUT_FILE"))
	}
	if c.HasTarget("webhook") && c.Output.WebhookURL == "" {
		errs = append(errs, errors.New("webhook output requires LATEWATCH_WEBHOOK_URL"))
	}
	if c.Output.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("output max size must be >= 0, got %d", c.Output.MaxSize))
	}
	if !slices.Contains(verbosities, c.Output.Verbosity) {
		errs = append(errs, fmt.Errorf("unknown verbosity %q (want minimal or standard)", c.Output.Verbosity))
	}

	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvList splits a comma-separated value, dropping blanks.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getenvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getenvInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
