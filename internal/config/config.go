// Package config provides configuration loading and management for pdfxref.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PageCounterPdftk  = "pdftk"
	PageCounterPdfcpu = "pdfcpu"

	OnErrorAbort = "abort"
	OnErrorSkip  = "skip"
)

// Config represents the complete pdfxref configuration
type Config struct {
	Documents DocumentsConfig `yaml:"documents"`
	Tools     ToolsConfig     `yaml:"tools"`
	Run       RunConfig       `yaml:"run"`
}

// DocumentsConfig controls how documents are discovered and how filenames are parsed
type DocumentsConfig struct {
	// Extension is the recognized document extension (default: .pdf)
	Extension string `yaml:"extension"`
	// NonFreeMarker marks a non-free document when present anywhere in the filename
	NonFreeMarker string `yaml:"nonfree_marker"`
	// Century is added to the two-digit year of a filename (default: 2000)
	Century int `yaml:"century"`
}

// ToolsConfig configures the external page-count and search tools
type ToolsConfig struct {
	// PageCounter selects the page-count backend: pdftk or pdfcpu
	PageCounter string `yaml:"page_counter"`
	// Pdftk is the pdftk binary name or path
	Pdftk string `yaml:"pdftk"`
	// Pdfgrep is the pdfgrep binary name or path
	Pdfgrep string `yaml:"pdfgrep"`
	// Timeout bounds every single tool invocation
	Timeout time.Duration `yaml:"timeout"`
	// Regex passes the search string to pdfgrep as a regular expression instead of a fixed string
	Regex bool `yaml:"regex"`
	// IgnoreCase makes searches case-insensitive
	IgnoreCase bool `yaml:"ignore_case"`
}

// RunConfig controls failure handling
type RunConfig struct {
	// OnError is abort (stop the run) or skip (leave the failing file or pair out)
	OnError string `yaml:"on_error"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Documents: DocumentsConfig{
			Extension:     ".pdf",
			NonFreeMarker: "nonfree",
			Century:       2000,
		},
		Tools: ToolsConfig{
			PageCounter: PageCounterPdftk,
			Pdftk:       "pdftk",
			Pdfgrep:     "pdfgrep",
			Timeout:     time.Minute,
		},
		Run: RunConfig{
			OnError: OnErrorAbort,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Documents.Extension, ".") {
		return fmt.Errorf("documents.extension must start with a dot, got %q", c.Documents.Extension)
	}
	if c.Documents.NonFreeMarker == "" {
		return fmt.Errorf("documents.nonfree_marker is required")
	}
	if c.Documents.Century < 0 || c.Documents.Century%100 != 0 {
		return fmt.Errorf("documents.century must be a non-negative multiple of 100, got %d", c.Documents.Century)
	}
	switch c.Tools.PageCounter {
	case PageCounterPdftk:
		if c.Tools.Pdftk == "" {
			return fmt.Errorf("tools.pdftk is required when page_counter is pdftk")
		}
	case PageCounterPdfcpu:
	default:
		return fmt.Errorf("tools.page_counter must be pdftk or pdfcpu, got %q", c.Tools.PageCounter)
	}
	if c.Tools.Pdfgrep == "" {
		return fmt.Errorf("tools.pdfgrep is required")
	}
	if c.Tools.Timeout <= 0 {
		return fmt.Errorf("tools.timeout must be positive")
	}
	switch c.Run.OnError {
	case OnErrorAbort, OnErrorSkip:
	default:
		return fmt.Errorf("run.on_error must be abort or skip, got %q", c.Run.OnError)
	}
	return nil
}

// SkipFailed reports whether failing files and pairs are skipped instead of aborting the run.
func (c *Config) SkipFailed() bool {
	return c.Run.OnError == OnErrorSkip
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// A false bool in other never switches a setting off; config files loaded by
// Loader can.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Documents
	if other.Documents.Extension != "" {
		c.Documents.Extension = other.Documents.Extension
	}
	if other.Documents.NonFreeMarker != "" {
		c.Documents.NonFreeMarker = other.Documents.NonFreeMarker
	}
	if other.Documents.Century != 0 {
		c.Documents.Century = other.Documents.Century
	}

	// Tools
	if other.Tools.PageCounter != "" {
		c.Tools.PageCounter = other.Tools.PageCounter
	}
	if other.Tools.Pdftk != "" {
		c.Tools.Pdftk = other.Tools.Pdftk
	}
	if other.Tools.Pdfgrep != "" {
		c.Tools.Pdfgrep = other.Tools.Pdfgrep
	}
	if other.Tools.Timeout != 0 {
		c.Tools.Timeout = other.Tools.Timeout
	}
	if other.Tools.Regex {
		c.Tools.Regex = true
	}
	if other.Tools.IgnoreCase {
		c.Tools.IgnoreCase = true
	}

	// Run
	if other.Run.OnError != "" {
		c.Run.OnError = other.Run.OnError
	}
}
