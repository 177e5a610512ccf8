// Package config loads the hostprint YAML configuration. A missing file
// means defaults; a present file overlays only the fields it specifies.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/hostprint/internal/model"
)

// Duration wraps time.Duration so YAML values like "30s" parse directly.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// AssemblyConfig controls collector execution.
type AssemblyConfig struct {
	Parallel int      `yaml:"parallel"`
	Timeout  Duration `yaml:"timeout"`
	Disabled []string `yaml:"disabled"`
}

// HashRule marks fields of one collector whose leaf values are replaced by
// one-way digests at assembly time. An empty field path addresses the whole
// reading.
type HashRule struct {
	Collector string   `yaml:"collector"`
	Fields    []string `yaml:"fields"`
}

// HashingConfig controls sensitive-field hashing.
type HashingConfig struct {
	Enabled bool       `yaml:"enabled"`
	Rules   []HashRule `yaml:"rules"`
}

// SeverityOverride pins a specific collector/path combination to a severity.
// The longest matching path prefix wins.
type SeverityOverride struct {
	Collector string `yaml:"collector"`
	Path      string `yaml:"path"`
	Severity  string `yaml:"severity"`
}

// SeverityConfig is the change classification table. It is policy, not
// mechanism: operators are expected to disagree with the defaults.
type SeverityConfig struct {
	Critical  []string           `yaml:"critical"`
	High      []string           `yaml:"high"`
	Overrides []SeverityOverride `yaml:"overrides"`
	Removed   string             `yaml:"removed"`
	Default   string             `yaml:"default"`
}

// StorageConfig controls where snapshot artifacts are written.
type StorageConfig struct {
	Dir string `yaml:"dir"`
}

// HistoryConfig locates the snapshot catalog database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Config holds all configurable hostprint parameters.
type Config struct {
	Assembly AssemblyConfig `yaml:"assembly"`
	Hashing  HashingConfig  `yaml:"hashing"`
	Severity SeverityConfig `yaml:"severity"`
	Storage  StorageConfig  `yaml:"storage"`
	History  HistoryConfig  `yaml:"history"`
}

// DefaultDir returns the hostprint home directory, honoring HOSTPRINT_DIR.
func DefaultDir() string {
	if dir := os.Getenv("HOSTPRINT_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hostprint")
	}
	return filepath.Join(home, ".hostprint")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Assembly: AssemblyConfig{
			Parallel: 4,
			Timeout:  Duration(30 * time.Second),
		},
		Hashing: HashingConfig{
			Enabled: true,
			Rules: []HashRule{
				{Collector: "network_config", Fields: []string{"ip_addresses", "arp_cache", "routes", "wifi_networks"}},
				{Collector: "ssh_config", Fields: []string{"known_hosts"}},
				{Collector: "hosts_file", Fields: []string{"entries"}},
			},
		},
		Severity: SeverityConfig{
			Critical: []string{"security_settings", "ssh_config"},
			High: []string{
				"kernel_modules", "system_services", "user_accounts",
				"network_config", "scheduled_tasks",
			},
			Removed: string(model.SeverityMedium),
			Default: string(model.SeverityLow),
		},
		Storage: StorageConfig{
			Dir: filepath.Join(DefaultDir(), "snapshots"),
		},
		History: HistoryConfig{
			Path: filepath.Join(DefaultDir(), "history.db"),
		},
	}
}

// Load reads configuration from a YAML file. Empty path falls back to the
// default location. Missing file returns defaults. Invalid YAML or invalid
// values return an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 hash of the raw
// bytes on disk, for logging. When no file exists the hash is the SHA-256
// of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	h := sha256.Sum256(data)
	return cfg, "sha256:" + hex.EncodeToString(h[:]), nil
}

// Validate checks severity names and assembly bounds.
func (c *Config) Validate() error {
	if time.Duration(c.Assembly.Timeout) <= 0 {
		return fmt.Errorf("assembly.timeout must be positive")
	}
	if _, err := model.ParseSeverity(c.Severity.Removed); err != nil {
		return fmt.Errorf("severity.removed: %w", err)
	}
	if _, err := model.ParseSeverity(c.Severity.Default); err != nil {
		return fmt.Errorf("severity.default: %w", err)
	}
	for _, o := range c.Severity.Overrides {
		if o.Collector == "" {
			return fmt.Errorf("severity override missing collector")
		}
		if _, err := model.ParseSeverity(o.Severity); err != nil {
			return fmt.Errorf("severity override for %s: %w", o.Collector, err)
		}
	}
	return nil
}
