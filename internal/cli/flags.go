package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/pdfxref/internal/config"
	"github.com/morozRed/pdfxref/internal/logger"
	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newAdapter builds the external tool adapter. Tests replace it.
var newAdapter = tools.New

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// settings is what every command needs before touching a directory.
type settings struct {
	dir     string
	config  *config.Config
	logger  zerolog.Logger
	verbose bool
	asJSON  bool
}

// loadSettings resolves the directory argument, builds the logger and loads the
// layered configuration with flag overrides applied last. The configuration is
// validated unless the caller reports problems itself.
func loadSettings(cmd *cobra.Command, args []string, validate bool) (*settings, error) {
	dir, err := resolvePDFDir(args)
	if err != nil {
		return nil, err
	}
	verbose, err := OptionalBoolFlag(cmd, "verbose", false)
	if err != nil {
		return nil, err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return nil, err
	}
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	logFormat, err := OptionalStringFlag(cmd, "log-format")
	if err != nil {
		return nil, err
	}
	switch logFormat {
	case "", "console", "json":
	default:
		return nil, fmt.Errorf("--log-format must be console or json, got %q", logFormat)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Output: cmd.ErrOrStderr(), JSON: logFormat == "json"})

	cfg, err := config.NewLoader(log).Load(dir, configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return &settings{dir: dir, config: cfg, logger: log, verbose: verbose, asJSON: asJSON}, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("century") {
		century, err := flags.GetInt("century")
		if err != nil {
			return fmt.Errorf("failed to read --century flag: %w", err)
		}
		cfg.Documents.Century = century
	}
	if flags.Changed("page-counter") {
		counter, err := OptionalStringFlag(cmd, "page-counter")
		if err != nil {
			return err
		}
		cfg.Tools.PageCounter = counter
	}
	if flags.Changed("timeout") {
		timeout, err := flags.GetDuration("timeout")
		if err != nil {
			return fmt.Errorf("failed to read --timeout flag: %w", err)
		}
		cfg.Tools.Timeout = timeout
	}
	if flags.Changed("skip-failed") {
		skip, err := OptionalBoolFlag(cmd, "skip-failed", false)
		if err != nil {
			return err
		}
		if skip {
			cfg.Run.OnError = config.OnErrorSkip
		} else {
			cfg.Run.OnError = config.OnErrorAbort
		}
	}
	return nil
}

func resolvePDFDir(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("missing <pdfdir> argument")
	}
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
