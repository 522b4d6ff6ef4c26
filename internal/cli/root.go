package cli

import (
	"fmt"
	"time"

	"github.com/morozRed/pdfxref/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pdfxref <pdfdir>",
		Short: "Catalog a directory of PDFs and find which ones cite each other",
		Long: `pdfxref builds a metadata catalog of the PDF documents in a directory.
Identity fields come from the filename (<author><yy>_..._<name>.pdf) and the
page count; descriptive fields can be filled in a guided session. With
--crossrefs every document is searched for the name of every other one.

The catalog is cached in <pdfdir>/metadata, one JSON record per line, and is
only rewritten when the whole run succeeds.`,
		Args:         cobra.ExactArgs(1),
		RunE:         RunCatalog,
		SilenceUsage: true,
	}

	persistent := rootCmd.PersistentFlags()
	persistent.BoolP("verbose", "v", false, "Log debug details")
	persistent.Bool("json", false, "Print machine-readable output")
	persistent.String("log-format", "console", "Log format on stderr: console|json")
	persistent.String("config", "", "Config file applied on top of user and directory config")
	persistent.Int("century", config.DefaultConfig().Documents.Century, "Century added to two-digit filename years")
	persistent.String("page-counter", config.PageCounterPdftk, "Page count backend: pdftk|pdfcpu")
	persistent.Duration("timeout", time.Minute, "Timeout for each external tool call")

	rootCmd.Flags().BoolP("no-metadata", "n", false, "Ignore the metadata file and parse every PDF again")
	rootCmd.Flags().BoolP("guided", "g", false, "Prompt for unset fields and confirm every crossref")
	rootCmd.Flags().BoolP("crossrefs", "c", false, "Compute crossrefs between all documents")
	rootCmd.Flags().Bool("skip-failed", false, "Leave out files and pairs whose tool call fails instead of aborting")
	rootCmd.Flags().Bool("only-missing", false, "Only search pairs whose crossref is still unknown")

	// Inspect Commands
	statusCmd := &cobra.Command{
		Use:   "status <pdfdir>",
		Short: "Compare the metadata file with the directory",
		Args:  cobra.ExactArgs(1),
		RunE:  RunStatus,
	}

	matrixCmd := &cobra.Command{
		Use:   "matrix <pdfdir>",
		Short: "Print the crossref matrix of the cached catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  RunMatrix,
	}

	doctorCmd := &cobra.Command{
		Use:   "doctor <pdfdir>",
		Short: "Check configuration, external tools and metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDoctor,
	}

	configCmd := &cobra.Command{
		Use:   "config <pdfdir>",
		Short: "Print the effective configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  RunConfig,
	}
	configCmd.Flags().Bool("write", false, "Write the effective configuration to <pdfdir>/"+config.ProjectConfigFile)

	// Output Commands
	exportCmd := &cobra.Command{
		Use:   "export <pdfdir>",
		Short: "Write the cached catalog to an SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE:  RunExport,
	}
	exportCmd.Flags().String("db", "", "SQLite database file to (re)create the catalog tables in")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pdfxref %s\n", version)
		},
	}

	rootCmd.AddCommand(
		statusCmd,
		matrixCmd,
		doctorCmd,
		configCmd,
		exportCmd,
		versionCmd,
	)

	return rootCmd
}
