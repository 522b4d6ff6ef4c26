package cli

import (
	"fmt"
	"path/filepath"

	"github.com/morozRed/pdfxref/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RunConfig prints the effective configuration of a directory, or writes it to
// the directory's config file with --write.
func RunConfig(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args, true)
	if err != nil {
		return err
	}
	write, err := OptionalBoolFlag(cmd, "write", false)
	if err != nil {
		return err
	}

	if write {
		path := filepath.Join(s.dir, config.ProjectConfigFile)
		if err := s.config.SaveToFile(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config: wrote %s\n", path)
		return nil
	}

	data, err := yaml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
