package cli

import (
	"fmt"

	"github.com/morozRed/pdfxref/internal/cache"
	"github.com/morozRed/pdfxref/internal/catalog"
	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/xref"
	"github.com/spf13/cobra"
)

// RunStatus compares the metadata file with the directory without running any
// external tool or writing anything.
func RunStatus(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args, true)
	if err != nil {
		return err
	}

	cached, err := cache.Load(s.dir)
	if err != nil {
		return err
	}
	files, err := listDocuments(s)
	if err != nil {
		return err
	}

	diff := catalog.Reconcile(cached, files)
	summary := StatusSummary{
		Mode:       "status",
		PDFDir:     s.dir,
		HasCache:   cached != nil,
		Cached:     len(cached),
		Present:    len(diff.Present),
		New:        len(diff.New),
		Stale:      len(diff.Stale),
		Unknown:    xref.BuildMatrix(cached).Unknown(),
		NewFiles:   diff.New,
		StaleFiles: diff.Stale,
	}
	for _, doc := range cached {
		if len(doc.Missing()) == 0 {
			summary.Complete++
		} else {
			summary.Incomplete = append(summary.Incomplete, doc.Filename)
		}
	}

	return PrintStatusSummary(cmd.OutOrStdout(), summary, s.asJSON)
}

func listDocuments(s *settings) ([]string, error) {
	parser := document.Parser{
		Extension:     s.config.Documents.Extension,
		NonFreeMarker: s.config.Documents.NonFreeMarker,
		Century:       s.config.Documents.Century,
	}
	return catalog.NewBuilder(parser, nil, nil, s.logger).ListDocuments(s.dir)
}

// loadCatalog returns the cached records of the directory, failing when there
// are none yet.
func loadCatalog(s *settings) ([]*document.Document, error) {
	docs, err := cache.Load(s.dir)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		return nil, fmt.Errorf("no metadata in %s, run pdfxref %s first", s.dir, s.dir)
	}
	return docs, nil
}
