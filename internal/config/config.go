// Package config loads, merges and validates shipshape configuration.
// Precedence is CLI flags over config file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/shipshape/internal/models"
	"github.com/harrison/shipshape/internal/rules"
)

// HistoryConfig represents run-history storage configuration
type HistoryConfig struct {
	// Enabled enables recording scans and applies to the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (empty = state home default)
	DBPath string `yaml:"db_path"`

	// KeepRuns is the maximum number of scans to retain (0 = unlimited)
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents shipshape configuration options
type Config struct {
	// MaxPathLength is the destination's full-path character limit
	MaxPathLength int `yaml:"max_path_length"`

	// MaxNameLength is the destination's file-name character limit
	MaxNameLength int `yaml:"max_name_length"`

	// IllegalChars are the characters the destination rejects in names.
	// An empty set is a configuration error, not "no checking".
	IllegalChars string `yaml:"illegal_chars"`

	// ReservedNames are stems the destination refuses (nil = defaults)
	ReservedNames []string `yaml:"reserved_names"`

	// IllegalPrefixes are name prefixes the destination rejects (nil = defaults)
	IllegalPrefixes []string `yaml:"illegal_prefixes"`

	// IllegalSuffixes are name suffixes the destination rejects (nil = defaults)
	IllegalSuffixes []string `yaml:"illegal_suffixes"`

	// NameStrategy selects how illegal characters are rewritten
	// (underscore, remove, ascii)
	NameStrategy string `yaml:"name_strategy"`

	// PlaceholderName replaces a name whose stem is empty after fixing
	PlaceholderName string `yaml:"placeholder_name"`

	// PathStrategies orders the path-shortening chain; the fallback
	// strategy always runs last regardless of this list
	PathStrategies []string `yaml:"path_strategies"`

	// KeepPolicy selects which duplicate survives
	// (earliest-created, newest-created, smallest-size, largest-size)
	KeepPolicy string `yaml:"keep_policy"`

	// HashThresholdMB is the largest file size, in MiB, that still gets
	// content-hashed during the scan (0 = never hash)
	HashThresholdMB int `yaml:"hash_threshold_mb"`

	// Workers is the scan and apply concurrency (0 = number of CPUs)
	Workers int `yaml:"workers"`

	// IgnoreHidden skips dot-files and dot-directories during the scan
	IgnoreHidden bool `yaml:"ignore_hidden"`

	// Mode selects how apply materializes the target tree (copy, move)
	Mode string `yaml:"mode"`

	// PreserveTimestamps carries source modification times onto targets
	PreserveTimestamps bool `yaml:"preserve_timestamps"`

	// Severities overrides the built-in issue-kind severity table,
	// keyed by issue kind with values "critical" or "warning"
	Severities map[string]string `yaml:"severities"`

	// WatchDebounce is how long watch mode waits after the last filesystem
	// event before rescanning
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = state home)
	LogDir string `yaml:"log_dir"`

	// History contains run-history storage configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		MaxPathLength:      rules.DefaultMaxPathLength,
		MaxNameLength:      rules.DefaultMaxNameLength,
		IllegalChars:       rules.DefaultIllegalChars,
		ReservedNames:      rules.DefaultReservedNames(),
		IllegalPrefixes:    rules.DefaultIllegalPrefixes(),
		IllegalSuffixes:    rules.DefaultIllegalSuffixes(),
		NameStrategy:       string(rules.NameUnderscore),
		PlaceholderName:    rules.PlaceholderStem,
		PathStrategies:     pathStrategyStrings(rules.DefaultPathStrategyOrder()),
		KeepPolicy:         string(models.KeepEarliestCreated),
		HashThresholdMB:    50,
		Workers:            0, // Number of CPUs
		IgnoreHidden:       false,
		Mode:               "copy",
		PreserveTimestamps: true,
		Severities:         map[string]string{},
		WatchDebounce:      2 * time.Second,
		LogLevel:           "info",
		LogDir:             "",
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   "",
			KeepRuns: 100,
		},
	}
}

func pathStrategyStrings(order []rules.PathStrategy) []string {
	out := make([]string, len(order))
	for i, s := range order {
		out[i] = string(s)
	}
	return out
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		MaxPathLength      int               `yaml:"max_path_length"`
		MaxNameLength      int               `yaml:"max_name_length"`
		IllegalChars       string            `yaml:"illegal_chars"`
		ReservedNames      []string          `yaml:"reserved_names"`
		IllegalPrefixes    []string          `yaml:"illegal_prefixes"`
		IllegalSuffixes    []string          `yaml:"illegal_suffixes"`
		NameStrategy       string            `yaml:"name_strategy"`
		PlaceholderName    string            `yaml:"placeholder_name"`
		PathStrategies     []string          `yaml:"path_strategies"`
		KeepPolicy         string            `yaml:"keep_policy"`
		HashThresholdMB    int               `yaml:"hash_threshold_mb"`
		Workers            int               `yaml:"workers"`
		IgnoreHidden       bool              `yaml:"ignore_hidden"`
		Mode               string            `yaml:"mode"`
		PreserveTimestamps bool              `yaml:"preserve_timestamps"`
		Severities         map[string]string `yaml:"severities"`
		WatchDebounce      string            `yaml:"watch_debounce"`
		LogLevel           string            `yaml:"log_level"`
		LogDir             string            `yaml:"log_dir"`
		History            HistoryConfig     `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.MaxPathLength != 0 {
		cfg.MaxPathLength = yamlCfg.MaxPathLength
	}
	if yamlCfg.MaxNameLength != 0 {
		cfg.MaxNameLength = yamlCfg.MaxNameLength
	}
	if yamlCfg.NameStrategy != "" {
		cfg.NameStrategy = yamlCfg.NameStrategy
	}
	if yamlCfg.PlaceholderName != "" {
		cfg.PlaceholderName = yamlCfg.PlaceholderName
	}
	if yamlCfg.KeepPolicy != "" {
		cfg.KeepPolicy = yamlCfg.KeepPolicy
	}
	if yamlCfg.HashThresholdMB != 0 {
		cfg.HashThresholdMB = yamlCfg.HashThresholdMB
	}
	if yamlCfg.Workers != 0 {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.Mode != "" {
		cfg.Mode = yamlCfg.Mode
	}
	if yamlCfg.WatchDebounce != "" {
		debounce, err := time.ParseDuration(yamlCfg.WatchDebounce)
		if err != nil {
			return nil, fmt.Errorf("invalid watch_debounce format %q: %w", yamlCfg.WatchDebounce, err)
		}
		cfg.WatchDebounce = debounce
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}

	// Slices and maps distinguish "absent" (nil) from "provided but empty",
	// so an explicit `reserved_names: []` clears the defaults.
	if yamlCfg.ReservedNames != nil {
		cfg.ReservedNames = yamlCfg.ReservedNames
	}
	if yamlCfg.IllegalPrefixes != nil {
		cfg.IllegalPrefixes = yamlCfg.IllegalPrefixes
	}
	if yamlCfg.IllegalSuffixes != nil {
		cfg.IllegalSuffixes = yamlCfg.IllegalSuffixes
	}
	if yamlCfg.PathStrategies != nil {
		cfg.PathStrategies = yamlCfg.PathStrategies
	}
	if yamlCfg.Severities != nil {
		cfg.Severities = yamlCfg.Severities
	}

	// Presence checks for fields where the file may legitimately carry the
	// zero value: illegal_chars "" must fail validation rather than be
	// silently replaced, and bools need explicit-false to stick.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["illegal_chars"]; exists {
			cfg.IllegalChars = yamlCfg.IllegalChars
		}
		if _, exists := rawMap["ignore_hidden"]; exists {
			cfg.IgnoreHidden = yamlCfg.IgnoreHidden
		}
		if _, exists := rawMap["preserve_timestamps"]; exists {
			cfg.PreserveTimestamps = yamlCfg.PreserveTimestamps
		}

		// Merge the history section field by field so partial sections
		// keep the remaining defaults.
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			history := yamlCfg.History
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = history.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = history.DBPath
			}
			if _, exists := historyMap["keep_runs"]; exists {
				cfg.History.KeepRuns = history.KeepRuns
			}
		}
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(workers *int, hashThresholdMB *int, keepPolicy *string, mode *string, ignoreHidden *bool, preserveTimestamps *bool, logDir *string) {
	if workers != nil {
		c.Workers = *workers
	}
	if hashThresholdMB != nil {
		c.HashThresholdMB = *hashThresholdMB
	}
	if keepPolicy != nil {
		c.KeepPolicy = *keepPolicy
	}
	if mode != nil {
		c.Mode = *mode
	}
	if ignoreHidden != nil {
		c.IgnoreHidden = *ignoreHidden
	}
	if preserveTimestamps != nil {
		c.PreserveTimestamps = *preserveTimestamps
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.MaxPathLength <= 0 {
		return fmt.Errorf("max_path_length must be > 0, got %d", c.MaxPathLength)
	}
	if c.MaxNameLength <= 0 {
		return fmt.Errorf("max_name_length must be > 0, got %d", c.MaxNameLength)
	}
	if c.IllegalChars == "" {
		return fmt.Errorf("illegal_chars cannot be empty")
	}

	if _, err := rules.ParseNameStrategy(c.NameStrategy); err != nil {
		return fmt.Errorf("invalid name_strategy: %w", err)
	}
	if c.PlaceholderName == "" {
		return fmt.Errorf("placeholder_name cannot be empty")
	}
	for _, s := range c.PathStrategies {
		if _, err := rules.ParsePathStrategy(s); err != nil {
			return fmt.Errorf("invalid path_strategies entry: %w", err)
		}
	}
	if _, err := models.ParseKeepPolicy(c.KeepPolicy); err != nil {
		return fmt.Errorf("invalid keep_policy: %w", err)
	}

	if c.HashThresholdMB < 0 {
		return fmt.Errorf("hash_threshold_mb must be >= 0, got %d", c.HashThresholdMB)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	if c.Mode != "copy" && c.Mode != "move" {
		return fmt.Errorf("invalid mode %q, must be copy or move", c.Mode)
	}

	for kind, severity := range c.Severities {
		if _, err := models.ParseIssueKind(kind); err != nil {
			return fmt.Errorf("invalid severities key: %w", err)
		}
		if _, err := models.ParseSeverity(severity); err != nil {
			return fmt.Errorf("invalid severities value for %s: %w", kind, err)
		}
	}

	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must be >= 0, got %v", c.WatchDebounce)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.KeepRuns < 0 {
		return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
	}

	return nil
}

// Ruleset builds the validated rule layer from the naming and path fields.
func (c *Config) Ruleset() (*rules.Ruleset, error) {
	return rules.New(rules.Params{
		MaxNameLength:   c.MaxNameLength,
		MaxPathLength:   c.MaxPathLength,
		IllegalChars:    c.IllegalChars,
		ReservedNames:   c.ReservedNames,
		IllegalPrefixes: c.IllegalPrefixes,
		IllegalSuffixes: c.IllegalSuffixes,
		NameStrategy:    c.NameStrategy,
		StrategyOrder:   c.PathStrategies,
		Placeholder:     c.PlaceholderName,
	})
}

// SeverityTable returns the issue-kind severity mapping: the built-in
// defaults with the configured overrides applied on top.
func (c *Config) SeverityTable() (map[models.IssueKind]models.Severity, error) {
	table := models.DefaultSeverities()
	for kindStr, severityStr := range c.Severities {
		kind, err := models.ParseIssueKind(kindStr)
		if err != nil {
			return nil, err
		}
		severity, err := models.ParseSeverity(severityStr)
		if err != nil {
			return nil, err
		}
		table[kind] = severity
	}
	return table, nil
}

// KeepPolicyValue returns the parsed duplicate keep policy.
func (c *Config) KeepPolicyValue() (models.KeepPolicy, error) {
	return models.ParseKeepPolicy(c.KeepPolicy)
}

// HashThresholdBytes returns the content-hash size cutoff in bytes.
func (c *Config) HashThresholdBytes() int64 {
	return int64(c.HashThresholdMB) * 1024 * 1024
}
