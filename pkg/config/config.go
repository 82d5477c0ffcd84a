// Package config loads fathom's configuration from standard file
// locations, layered over defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for fathom.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings for generated reports
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`

	// Report generation settings
	Generate GenerateConfig `koanf:"generate"`
}

// AnalysisConfig controls extraction and grouping.
type AnalysisConfig struct {
	// MaxFileSize caps the bytes read per file; larger files yield zero
	// functions. 0 means no cap.
	MaxFileSize int64 `koanf:"max_file_size"`

	// Workers is the parallel file-analysis worker count. 0 means 2x CPUs.
	Workers int `koanf:"workers"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// CacheConfig controls report caching.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// GenerateConfig controls deep-dive report generation.
type GenerateConfig struct {
	// Model names the chat model; empty falls back to the OPENAI_MODEL
	// environment variable, then the built-in default.
	Model string `koanf:"model"`

	// Workers is the concurrent generation request count.
	Workers int `koanf:"workers"`

	// SnippetBudget caps the total source characters quoted per group
	// prompt.
	SnippetBudget int `koanf:"snippet_budget"`

	// TargetWords is the requested report length.
	TargetWords int `koanf:"target_words"`

	// PauseSeconds is the sleep between completed requests per worker.
	PauseSeconds int `koanf:"pause_seconds"`
}

// DefaultModel is used when neither config nor environment name one.
const DefaultModel = "gpt-4o-mini"

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize: 600_000,
			Workers:     0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".fathom",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".fathom/cache",
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
		Generate: GenerateConfig{
			Model:         "",
			Workers:       3,
			SnippetBudget: 14_000,
			TargetWords:   3_000,
			PauseSeconds:  1,
		},
	}
}

// ResolveModel returns the configured model, the OPENAI_MODEL environment
// variable, or the built-in default, in that order.
func (c *Config) ResolveModel() string {
	if c.Generate.Model != "" {
		return c.Generate.Model
	}
	if env := os.Getenv("OPENAI_MODEL"); env != "" {
		return env
	}
	return DefaultModel
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"fathom.toml",
		"fathom.yaml",
		"fathom.yml",
		"fathom.json",
		".fathom.toml",
		".fathom.yaml",
		".fathom.yml",
		".fathom.json",
	}

	searchDirs := []string{".", ".fathom"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
