package catalog

import (
	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/fileutil"
)

// Diff compares cached records with a directory listing by exact filename.
type Diff struct {
	// Present lists cached files that still exist, in cache order.
	Present []string `json:"present,omitempty"`
	// New lists files without a cached record, in listing order.
	New []string `json:"new,omitempty"`
	// Stale lists cached files that no longer exist, in cache order.
	Stale []string `json:"stale,omitempty"`
}

// Reconcile computes the Diff without touching any record.
func Reconcile(cached []*document.Document, files []string) Diff {
	onDisk := fileutil.ToSet(files)
	known := make(map[string]bool, len(cached))

	var diff Diff
	for _, doc := range cached {
		if known[doc.Filename] {
			continue
		}
		known[doc.Filename] = true
		if onDisk[doc.Filename] {
			diff.Present = append(diff.Present, doc.Filename)
		} else {
			diff.Stale = append(diff.Stale, doc.Filename)
		}
	}
	for _, file := range files {
		if !known[file] {
			diff.New = append(diff.New, file)
		}
	}
	return diff
}
