package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderConfig describes one catalog provider entry.
type ProviderConfig struct {
	Name       string `yaml:"name"`
	Enabled    bool   `yaml:"enabled"`
	MaxResults int    `yaml:"max_results"`
	Priority   int    `yaml:"priority"` // lower = preferred on near-equal scores
}

// Config contains the program configuration.
type Config struct {
	DatabasePath         string           `yaml:"database_path"`
	Verbose              bool             `yaml:"verbose"`
	Providers            []ProviderConfig `yaml:"providers"`
	AutoApplyThreshold   float64          `yaml:"auto_apply_threshold"`
	DurationToleranceSec int              `yaml:"duration_tolerance_sec"`
	TieEpsilon           float64          `yaml:"tie_epsilon"`
	WriteFileTags        bool             `yaml:"write_file_tags"`
	ListenAddr           string           `yaml:"listen_addr"`
}

// KnownProviders lists the provider names this build can construct.
var KnownProviders = []string{"beatport", "traxsource", "bandcamp", "itunes"}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DatabasePath: filepath.Join(homeDir(), ".local", "share", "harmony", "harmony.db"),
		Providers: []ProviderConfig{
			{Name: "beatport", Enabled: true, MaxResults: 5, Priority: 1},
			{Name: "traxsource", Enabled: true, MaxResults: 5, Priority: 2},
			{Name: "bandcamp", Enabled: true, MaxResults: 5, Priority: 3},
			{Name: "itunes", Enabled: true, MaxResults: 5, Priority: 4},
		},
		AutoApplyThreshold:   0.9,
		DurationToleranceSec: 2,
		TieEpsilon:           0.01,
		WriteFileTags:        true,
		ListenAddr:           "127.0.0.1:8337",
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.DatabasePath = ExpandHome(cfg.DatabasePath)

	return cfg, nil
}

// SaveConfigFile saves the configuration to a YAML file.
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations.
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./harmony.yaml",
		"./harmony.yml",
		filepath.Join(home, ".config", "harmony", "config.yaml"),
		filepath.Join(home, ".config", "harmony", "config.yml"),
		filepath.Join(home, ".harmony.yaml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "harmony", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path.
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "harmony", "logs")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// EnabledProviders returns the enabled provider entries ordered by priority.
func (c *Config) EnabledProviders() []ProviderConfig {
	var enabled []ProviderConfig
	for _, p := range c.Providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})
	return enabled
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path cannot be empty")
	}

	if c.AutoApplyThreshold < 0 || c.AutoApplyThreshold > 1 {
		return fmt.Errorf("auto_apply_threshold must be between 0.0 and 1.0, got %.2f", c.AutoApplyThreshold)
	}

	if c.DurationToleranceSec < 0 {
		return fmt.Errorf("duration_tolerance_sec cannot be negative, got %d", c.DurationToleranceSec)
	}

	if c.TieEpsilon < 0 || c.TieEpsilon > 0.5 {
		return fmt.Errorf("tie_epsilon must be between 0.0 and 0.5, got %.3f", c.TieEpsilon)
	}

	known := make(map[string]bool, len(KnownProviders))
	for _, name := range KnownProviders {
		known[name] = true
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if !known[p.Name] {
			return fmt.Errorf("unknown provider %q, valid providers: %s", p.Name, strings.Join(KnownProviders, ", "))
		}
		if seen[p.Name] {
			return fmt.Errorf("provider %q listed more than once", p.Name)
		}
		seen[p.Name] = true

		if p.MaxResults < 1 || p.MaxResults > 50 {
			return fmt.Errorf("provider %q max_results must be between 1 and 50, got %d", p.Name, p.MaxResults)
		}
	}

	return nil
}
