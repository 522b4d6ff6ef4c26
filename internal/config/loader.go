package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the name of the per-directory config file
	ProjectConfigFile = ".pdfxref.yaml"
	// UserConfigDir is the directory for user-level config, relative to $HOME
	UserConfigDir = ".config/pdfxref"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  zerolog.Logger
	homeDir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger zerolog.Logger) *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{logger: logger, homeDir: home}
}

// WithHomeDir overrides the directory the user config is resolved against.
func (l *Loader) WithHomeDir(dir string) *Loader {
	l.homeDir = dir
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/pdfxref/config.yaml)
// 3. Directory config (<pdfdir>/.pdfxref.yaml)
// 4. Explicit config file (--config)
//
// Missing user and directory files are skipped; a missing explicit file is an error.
// The result is not validated, callers apply flag overrides first.
func (l *Loader) Load(pdfDir, explicitPath string) (*Config, error) {
	config := DefaultConfig()

	if l.homeDir != "" {
		if err := l.layer(config, filepath.Join(l.homeDir, UserConfigDir, UserConfigFile), false); err != nil {
			return nil, err
		}
	}
	if pdfDir != "" {
		if err := l.layer(config, filepath.Join(pdfDir, ProjectConfigFile), false); err != nil {
			return nil, err
		}
	}
	if explicitPath != "" {
		if err := l.layer(config, explicitPath, true); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (l *Loader) layer(config *Config, path string, required bool) error {
	file, err := readOverlay(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			l.logger.Debug().Str("path", path).Msg("No config file")
			return nil
		}
		return err
	}
	l.logger.Debug().Str("path", path).Msg("Loaded config")
	config.Merge(file.Config)
	file.applySwitches(config)
	return nil
}

// overlay is one config file. Booleans are kept as pointers as well so a
// layer can switch off what a lower layer switched on.
type overlay struct {
	*Config
	switches struct {
		Tools struct {
			Regex      *bool `yaml:"regex"`
			IgnoreCase *bool `yaml:"ignore_case"`
		} `yaml:"tools"`
	}
}

func (o *overlay) applySwitches(c *Config) {
	if v := o.switches.Tools.Regex; v != nil {
		c.Tools.Regex = *v
	}
	if v := o.switches.Tools.IgnoreCase; v != nil {
		c.Tools.IgnoreCase = *v
	}
}

// readOverlay decodes a config file onto a zero Config so only keys present in
// the file take part in Merge.
func readOverlay(path string) (*overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	o := &overlay{Config: &Config{}}
	if err := yaml.Unmarshal(data, o.Config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &o.switches); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return o, nil
}
