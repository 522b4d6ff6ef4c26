package cli

import (
	"time"

	"github.com/morozRed/pdfxref/internal/cache"
	"github.com/morozRed/pdfxref/internal/catalog"
	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/prompt"
	"github.com/morozRed/pdfxref/internal/xref"
	"github.com/spf13/cobra"
)

// RunCatalog builds the catalog of a directory, optionally computes the
// cross-references and saves the metadata file. Nothing is written unless every
// step succeeds.
func RunCatalog(cmd *cobra.Command, args []string) error {
	start := time.Now()
	s, err := loadSettings(cmd, args, true)
	if err != nil {
		return err
	}
	noMetadata, err := OptionalBoolFlag(cmd, "no-metadata", false)
	if err != nil {
		return err
	}
	guided, err := OptionalBoolFlag(cmd, "guided", false)
	if err != nil {
		return err
	}
	crossrefs, err := OptionalBoolFlag(cmd, "crossrefs", false)
	if err != nil {
		return err
	}
	onlyMissing, err := OptionalBoolFlag(cmd, "only-missing", false)
	if err != nil {
		return err
	}

	adapter, err := newAdapter(s.config.Tools)
	if err != nil {
		return err
	}

	var asker document.Asker
	var xrefPrompter xref.Prompter
	if guided {
		promptOut := cmd.OutOrStdout()
		if s.asJSON {
			promptOut = cmd.ErrOrStderr()
		}
		p := prompt.New(cmd.InOrStdin(), promptOut)
		asker, xrefPrompter = p, p
	}
	quiet := guided || s.verbose || s.asJSON

	parser := document.Parser{
		Extension:     s.config.Documents.Extension,
		NonFreeMarker: s.config.Documents.NonFreeMarker,
		Century:       s.config.Documents.Century,
	}
	builder := catalog.NewBuilder(parser, adapter, asker, s.logger)
	parseProgress := newProgressReporter(cmd.ErrOrStderr(), "catalog", quiet)
	builder.Progress = parseProgress.Update

	ctx := commandContext(cmd)
	result, err := builder.Build(ctx, s.dir, catalog.Options{
		SkipCache:   noMetadata,
		Interactive: guided,
		SkipFailed:  s.config.SkipFailed(),
	})
	if err != nil {
		return err
	}
	parseProgress.Done(len(result.Added) + len(result.Failed))

	summary := RunSummary{
		Mode:        "catalog",
		PDFDir:      s.dir,
		Cached:      result.Cached,
		Added:       len(result.Added),
		Stale:       len(result.Stale),
		Failed:      len(result.Failed),
		AddedFiles:  result.Added,
		StaleFiles:  result.Stale,
		FailedFiles: result.Failed,
	}

	if crossrefs {
		engine := xref.NewEngine(adapter, xrefPrompter, xref.Options{
			Interactive: guided,
			OnlyMissing: onlyMissing,
			SkipFailed:  s.config.SkipFailed(),
		}, s.logger)
		searchProgress := newProgressReporter(cmd.ErrOrStderr(), "crossrefs", quiet)
		engine.Progress = func(done, total int) {
			searchProgress.Update("", done, total)
		}
		stats, err := engine.ComputeAll(ctx, result.Documents)
		if err != nil {
			return err
		}
		searchProgress.Done(stats.Pairs)
		summary.Crossrefs = &stats
	}

	if err := cache.Save(s.dir, result.Documents); err != nil {
		return err
	}
	s.logger.Debug().Str("path", cache.Path(s.dir)).Msg("Saved metadata")

	summary.Saved = true
	summary.Documents = len(result.Documents)
	summary.DurationMS = time.Since(start).Milliseconds()
	return PrintRunSummary(cmd.OutOrStdout(), summary, s.asJSON)
}
