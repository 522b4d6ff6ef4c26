package cli

import (
	"fmt"
	"sort"

	"github.com/morozRed/pdfxref/internal/cache"
	"github.com/morozRed/pdfxref/internal/config"
	"github.com/morozRed/pdfxref/internal/fileutil"
	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/spf13/cobra"
)

// RunDoctor reports whether a directory can be cataloged: configuration,
// external tools and metadata file. Problems are reported, not returned.
func RunDoctor(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args, false)
	if err != nil {
		return err
	}

	summary := DoctorSummary{
		Mode:        "doctor",
		PDFDir:      s.dir,
		PageCounter: s.config.Tools.PageCounter,
		Tools:       tools.Binaries(s.config.Tools),
		HasCache:    cache.Exists(s.dir),
	}

	if err := s.config.Validate(); err != nil {
		summary.ConfigError = err.Error()
		summary.Missing = append(summary.Missing, "valid configuration")
		summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("fix %s or the file passed to --config", config.ProjectConfigFile))
	}

	for _, bin := range summary.Tools {
		if !bin.Available {
			summary.Missing = append(summary.Missing, bin.Name)
			summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("install %s or set its path in %s", bin.Name, config.ProjectConfigFile))
		}
	}

	if files, err := listDocuments(s); err != nil {
		summary.Missing = append(summary.Missing, "readable directory")
	} else {
		summary.Documents = len(files)
	}

	if summary.HasCache {
		docs, err := cache.Load(s.dir)
		if err != nil {
			summary.CacheError = err.Error()
			summary.Missing = append(summary.Missing, "valid metadata file")
			summary.Suggestions = append(summary.Suggestions, "repair the metadata file or run pdfxref --no-metadata")
		} else {
			summary.Records = len(docs)
		}
	} else {
		summary.Suggestions = append(summary.Suggestions, "run pdfxref "+s.dir)
	}

	summary.Missing = fileutil.DedupeStrings(summary.Missing)
	sort.Strings(summary.Missing)
	summary.Suggestions = fileutil.DedupeStrings(summary.Suggestions)
	sort.Strings(summary.Suggestions)
	summary.Healthy = len(summary.Missing) == 0

	return PrintDoctorSummary(cmd.OutOrStdout(), summary, s.asJSON)
}
