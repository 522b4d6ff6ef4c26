package cli

import (
	"fmt"

	"github.com/morozRed/pdfxref/internal/export"
	"github.com/morozRed/pdfxref/internal/fileutil"
	"github.com/morozRed/pdfxref/internal/xref"
	"github.com/spf13/cobra"
)

// RunMatrix prints the cross-reference matrix of the cached catalog.
func RunMatrix(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args, true)
	if err != nil {
		return err
	}
	docs, err := loadCatalog(s)
	if err != nil {
		return err
	}

	matrix := xref.BuildMatrix(docs)
	if s.asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), matrix)
	}
	return matrix.Render(cmd.OutOrStdout())
}

// RunExport writes the cached catalog to an SQLite database.
func RunExport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args, true)
	if err != nil {
		return err
	}
	dbPath, err := OptionalStringFlag(cmd, "db")
	if err != nil {
		return err
	}
	if dbPath == "" {
		return fmt.Errorf("--db is required")
	}
	docs, err := loadCatalog(s)
	if err != nil {
		return err
	}

	if err := export.WriteSQLite(commandContext(cmd), dbPath, docs); err != nil {
		return err
	}
	s.logger.Info().Str("db", dbPath).Int("documents", len(docs)).Msg("Exported catalog")
	if s.asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), map[string]any{
			"mode":      "export",
			"db":        dbPath,
			"documents": len(docs),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "export: documents=%d db=%s\n", len(docs), dbPath)
	return nil
}
