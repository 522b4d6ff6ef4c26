package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/morozRed/pdfxref/internal/catalog"
	"github.com/morozRed/pdfxref/internal/fileutil"
	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/morozRed/pdfxref/internal/xref"
)

type RunSummary struct {
	Mode        string                `json:"mode"`
	PDFDir      string                `json:"pdf_dir"`
	Documents   int                   `json:"documents"`
	Cached      int                   `json:"cached"`
	Added       int                   `json:"added"`
	Stale       int                   `json:"stale"`
	Failed      int                   `json:"failed"`
	Saved       bool                  `json:"saved"`
	Crossrefs   *xref.Stats           `json:"crossrefs,omitempty"`
	DurationMS  int64                 `json:"duration_ms"`
	AddedFiles  []string              `json:"added_files,omitempty"`
	StaleFiles  []string              `json:"stale_files,omitempty"`
	FailedFiles []catalog.FileFailure `json:"failed_files,omitempty"`
}

type StatusSummary struct {
	Mode       string   `json:"mode"`
	PDFDir     string   `json:"pdf_dir"`
	HasCache   bool     `json:"has_cache"`
	Cached     int      `json:"cached"`
	Present    int      `json:"present"`
	New        int      `json:"new"`
	Stale      int      `json:"stale"`
	Complete   int      `json:"complete"`
	Unknown    int      `json:"unknown_crossrefs"`
	NewFiles   []string `json:"new_files,omitempty"`
	StaleFiles []string `json:"stale_files,omitempty"`
	// Incomplete lists cached files with unset descriptive fields.
	Incomplete []string `json:"incomplete_files,omitempty"`
}

type DoctorSummary struct {
	Mode        string         `json:"mode"`
	PDFDir      string         `json:"pdf_dir"`
	Healthy     bool           `json:"healthy"`
	ConfigError string         `json:"config_error,omitempty"`
	PageCounter string         `json:"page_counter"`
	Tools       []tools.Binary `json:"tools"`
	HasCache    bool           `json:"has_cache"`
	CacheError  string         `json:"cache_error,omitempty"`
	Records     int            `json:"records"`
	Documents   int            `json:"documents"`
	Missing     []string       `json:"missing,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w,
		"%s: documents=%d cached=%d added=%d stale=%d failed=%d saved=%t duration=%dms\n",
		summary.Mode,
		summary.Documents,
		summary.Cached,
		summary.Added,
		summary.Stale,
		summary.Failed,
		summary.Saved,
		summary.DurationMS,
	)
	if summary.Crossrefs != nil {
		fmt.Fprintf(w, "crossrefs: pairs=%d found=%d skipped=%d failed=%d\n",
			summary.Crossrefs.Pairs,
			summary.Crossrefs.Found,
			summary.Crossrefs.Skipped,
			summary.Crossrefs.Failed,
		)
	}
	if len(summary.AddedFiles) > 0 {
		fmt.Fprintf(w, "added files (%d): %s\n", len(summary.AddedFiles), fileutil.SummarizePaths(summary.AddedFiles, 8))
	}
	if len(summary.StaleFiles) > 0 {
		fmt.Fprintf(w, "stale files (%d): %s\n", len(summary.StaleFiles), fileutil.SummarizePaths(summary.StaleFiles, 8))
	}
	for _, failure := range summary.FailedFiles {
		fmt.Fprintf(w, "  %s <- %s\n", failure.Filename, failure.Message)
	}
	return nil
}

func PrintStatusSummary(w io.Writer, summary StatusSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w,
		"status: cache=%t cached=%d present=%d new=%d stale=%d complete=%d unknown_crossrefs=%d\n",
		summary.HasCache,
		summary.Cached,
		summary.Present,
		summary.New,
		summary.Stale,
		summary.Complete,
		summary.Unknown,
	)
	if len(summary.NewFiles) > 0 {
		fmt.Fprintf(w, "new files (%d): %s\n", len(summary.NewFiles), fileutil.SummarizePaths(summary.NewFiles, 8))
	}
	if len(summary.StaleFiles) > 0 {
		fmt.Fprintf(w, "stale files (%d): %s\n", len(summary.StaleFiles), fileutil.SummarizePaths(summary.StaleFiles, 8))
	}
	if len(summary.Incomplete) > 0 {
		fmt.Fprintf(w, "incomplete files (%d): %s\n", len(summary.Incomplete), fileutil.SummarizePaths(summary.Incomplete, 8))
	}
	return nil
}

func PrintDoctorSummary(w io.Writer, summary DoctorSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	status := "issues"
	if summary.Healthy {
		status = "ok"
	}
	fmt.Fprintf(w, "doctor: %s\n", status)
	if summary.ConfigError != "" {
		fmt.Fprintf(w, "config: %s\n", summary.ConfigError)
	}
	parts := make([]string, 0, len(summary.Tools))
	for _, bin := range summary.Tools {
		parts = append(parts, fmt.Sprintf("%s=%t", bin.Name, bin.Available))
	}
	fmt.Fprintf(w, "tools: page_counter=%s %s\n", summary.PageCounter, strings.Join(parts, " "))
	fmt.Fprintf(w, "cache: present=%t records=%d documents=%d\n", summary.HasCache, summary.Records, summary.Documents)
	if summary.CacheError != "" {
		fmt.Fprintf(w, "cache error: %s\n", summary.CacheError)
	}
	if len(summary.Missing) > 0 {
		fmt.Fprintf(w, "missing (%d): %s\n", len(summary.Missing), strings.Join(summary.Missing, ", "))
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Fprintf(w, "next: %s\n", suggestion)
	}
	return nil
}
