package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/javanhut/helix-manifest/internal/definition"
	"github.com/javanhut/helix-manifest/internal/manifest"
)

// Config represents Helix configuration
type Config struct {
	Definition DefinitionConfig `json:"definition"`
	Figma      FigmaConfig      `json:"figma"`
	Scan       ScanConfig       `json:"scan"`
	Output     OutputConfig     `json:"output"`
	Cache      CacheConfig      `json:"cache"`
	Color      ColorConfig      `json:"color"`
}

// DefinitionConfig locates the published definition document
type DefinitionConfig struct {
	URL      string `json:"url,omitempty"`
	CacheKey string `json:"cache_key,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
}

// FigmaConfig holds Figma API access
type FigmaConfig struct {
	Token  string `json:"token,omitempty"`
	APIURL string `json:"api_url,omitempty"`
}

// ScanConfig bounds the document scan
type ScanConfig struct {
	MaxDepth int `json:"max_depth,omitempty"`
}

// OutputConfig selects manifest sinks
type OutputConfig struct {
	Path    string `json:"path,omitempty"`
	History bool   `json:"history"`
}

// CacheConfig locates the local store
type CacheConfig struct {
	Path string `json:"path,omitempty"`
}

// ColorConfig holds color settings
type ColorConfig struct {
	UI bool `json:"ui"`
}

// Dir is the project directory holding config and cache.
const Dir = ".helix"

// Keys lists every configuration key in display order.
var Keys = []string{
	"definition.url",
	"definition.cache_key",
	"definition.timeout",
	"figma.token",
	"figma.api_url",
	"scan.max_depth",
	"output.path",
	"output.history",
	"cache.path",
	"color.ui",
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Definition: DefinitionConfig{
			URL:      definition.DefaultURL,
			CacheKey: definition.DefaultCacheKey,
			Timeout:  "30s",
		},
		Scan: ScanConfig{
			MaxDepth: manifest.DefaultMaxDepth,
		},
		Output: OutputConfig{
			History: true,
		},
		Cache: CacheConfig{
			Path: filepath.Join(Dir, "cache.db"),
		},
		Color: ColorConfig{
			UI: true,
		},
	}
}

// DefinitionTimeout parses the definition fetch timeout.
func (c *Config) DefinitionTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Definition.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid definition.timeout %q: %w", c.Definition.Timeout, err)
	}
	return d, nil
}

// globalConfigPath returns the path to the global config file
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".helixconfig"), nil
}

// projectConfigPath returns the path to the project config file
func projectConfigPath() string {
	return filepath.Join(Dir, "config")
}

// LoadConfig loads configuration from both global and project config files.
// Project config takes precedence over global config.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if globalPath, err := globalConfigPath(); err == nil {
		if err := mergeFile(cfg, globalPath); err != nil {
			return nil, err
		}
	}
	if err := mergeFile(cfg, projectConfigPath()); err != nil {
		return nil, err
	}
	if cfg.Figma.Token == "" {
		cfg.Figma.Token = os.Getenv("FIGMA_TOKEN")
	}
	return cfg, nil
}

// mergeFile merges the config file at path into cfg; a missing file is not
// an error, a malformed one is.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	// Absent bools keep the value merged so far.
	src := &Config{
		Output: OutputConfig{History: cfg.Output.History},
		Color:  ColorConfig{UI: cfg.Color.UI},
	}
	if err := json.Unmarshal(data, src); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	mergeConfig(cfg, src)
	return nil
}

func save(path string, cfg any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid config key: %s (expected format: section.key)", key)
	}
	return parts[0], parts[1], nil
}

// Get returns the value of key (e.g., "scan.max_depth") in cfg.
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "definition":
		switch field {
		case "url":
			return c.Definition.URL, nil
		case "cache_key":
			return c.Definition.CacheKey, nil
		case "timeout":
			return c.Definition.Timeout, nil
		}
	case "figma":
		switch field {
		case "token":
			return c.Figma.Token, nil
		case "api_url":
			return c.Figma.APIURL, nil
		}
	case "scan":
		if field == "max_depth" {
			return strconv.Itoa(c.Scan.MaxDepth), nil
		}
	case "output":
		switch field {
		case "path":
			return c.Output.Path, nil
		case "history":
			return strconv.FormatBool(c.Output.History), nil
		}
	case "cache":
		if field == "path" {
			return c.Cache.Path, nil
		}
	case "color":
		if field == "ui" {
			return strconv.FormatBool(c.Color.UI), nil
		}
	default:
		return "", fmt.Errorf("unknown config section: %s", section)
	}
	return "", fmt.Errorf("unknown %s config field: %s", section, field)
}

// Set assigns value to key in cfg, validating typed fields.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "definition":
		switch field {
		case "url":
			c.Definition.URL = value
			return nil
		case "cache_key":
			c.Definition.CacheKey = value
			return nil
		case "timeout":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid duration for %s: %w", key, err)
			}
			c.Definition.Timeout = value
			return nil
		}
	case "figma":
		switch field {
		case "token":
			c.Figma.Token = value
			return nil
		case "api_url":
			c.Figma.APIURL = value
			return nil
		}
	case "scan":
		if field == "max_depth" {
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for %s: %q (expected a positive integer)", key, value)
			}
			c.Scan.MaxDepth = n
			return nil
		}
	case "output":
		switch field {
		case "path":
			c.Output.Path = value
			return nil
		case "history":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			c.Output.History = b
			return nil
		}
	case "cache":
		if field == "path" {
			c.Cache.Path = value
			return nil
		}
	case "color":
		if field == "ui" {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			c.Color.UI = b
			return nil
		}
	default:
		return fmt.Errorf("unknown config section: %s", section)
	}
	return fmt.Errorf("unknown %s config field: %s", section, field)
}

// GetValue retrieves a configuration value by key from the merged config.
func GetValue(key string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Get(key)
}

// SetValue sets a configuration value by key in the global or project file.
// Only keys set explicitly are written, so a project file never pins
// defaults over the global file.
func SetValue(key, value string, global bool) error {
	path := projectConfigPath()
	if global {
		p, err := globalConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	scratch := DefaultConfig()
	if err := scratch.Set(key, value); err != nil {
		return err
	}
	section, field, _ := splitKey(key)

	raw := make(map[string]map[string]any)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if raw[section] == nil {
		raw[section] = make(map[string]any)
	}
	raw[section][field] = scratch.typed(key)
	return save(path, raw)
}

// typed returns the value of key with its JSON type.
func (c *Config) typed(key string) any {
	switch key {
	case "scan.max_depth":
		return c.Scan.MaxDepth
	case "output.history":
		return c.Output.History
	case "color.ui":
		return c.Color.UI
	}
	v, _ := c.Get(key)
	return v
}

// mergeConfig merges source config into destination config.
// Only non-empty values from source override destination; bools are
// always merged.
func mergeConfig(dst, src *Config) {
	if src.Definition.URL != "" {
		dst.Definition.URL = src.Definition.URL
	}
	if src.Definition.CacheKey != "" {
		dst.Definition.CacheKey = src.Definition.CacheKey
	}
	if src.Definition.Timeout != "" {
		dst.Definition.Timeout = src.Definition.Timeout
	}

	if src.Figma.Token != "" {
		dst.Figma.Token = src.Figma.Token
	}
	if src.Figma.APIURL != "" {
		dst.Figma.APIURL = src.Figma.APIURL
	}

	if src.Scan.MaxDepth > 0 {
		dst.Scan.MaxDepth = src.Scan.MaxDepth
	}

	if src.Output.Path != "" {
		dst.Output.Path = src.Output.Path
	}
	dst.Output.History = src.Output.History

	if src.Cache.Path != "" {
		dst.Cache.Path = src.Cache.Path
	}

	dst.Color.UI = src.Color.UI
}
