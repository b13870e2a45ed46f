// ABOUTME: Configuration for source-alias and unit-conversion tables.
// ABOUTME: Loads JSON overrides and merges them over built-in defaults.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config holds the data tables that drive normalization. All fields are
// optional in the JSON file; anything absent keeps its default.
type Config struct {
	// SourceAliases maps raw device/app names to canonical source names.
	// Names with no alias fall back to CleanSourceName of themselves.
	SourceAliases map[string]string `json:"source_aliases,omitempty"`

	// Unit multipliers to the canonical units (minutes, kilometers,
	// kilocalories). A workout field with an unlisted unit passes through
	// unconverted and is counted, never dropped.
	DurationUnits map[string]float64 `json:"duration_units,omitempty"`
	DistanceUnits map[string]float64 `json:"distance_units,omitempty"`
	EnergyUnits   map[string]float64 `json:"energy_units,omitempty"`
}

// Default returns the built-in conversion tables and an empty alias map.
func Default() *Config {
	return &Config{
		SourceAliases: map[string]string{},
		DurationUnits: map[string]float64{
			"min": 1,
			"sec": 1.0 / 60.0,
			"s":   1.0 / 60.0,
			"hr":  60,
			"day": 1440,
		},
		DistanceUnits: map[string]float64{
			"km": 1,
			"mi": 1.609344,
			"m":  0.001,
			"yd": 0.0009144,
			"ft": 0.0003048,
		},
		EnergyUnits: map[string]float64{
			"kcal": 1,
			"Cal":  1,
			"cal":  0.001,
			"kJ":   1.0 / 4.184,
			"J":    1.0 / 4184.0,
		},
	}
}

// Load reads a JSON config file and merges it over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var overlay Config
	if err := json.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for k, v := range overlay.SourceAliases {
		cfg.SourceAliases[k] = v
	}
	for k, v := range overlay.DurationUnits {
		cfg.DurationUnits[k] = v
	}
	for k, v := range overlay.DistanceUnits {
		cfg.DistanceUnits[k] = v
	}
	for k, v := range overlay.EnergyUnits {
		cfg.EnergyUnits[k] = v
	}
	return cfg, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanSourceName collapses the unicode noise devices put in their names:
// curly quotes, non-breaking spaces, repeated whitespace.
func CleanSourceName(name string) string {
	cleaned := strings.NewReplacer(
		"’", "'",
		"‘", "'",
		" ", " ",
	).Replace(name)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
}

// AliasFunc returns the total, deterministic source-name resolver used by the
// normalizer: explicit alias if configured, cleaned name otherwise.
func (c *Config) AliasFunc() func(string) string {
	return func(raw string) string {
		if canonical, ok := c.SourceAliases[raw]; ok {
			return canonical
		}
		return CleanSourceName(raw)
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
