// Package xref decides, for every ordered pair of cataloged documents, whether
// the first one mentions the second.
package xref

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/logger"
	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/rs/zerolog"
)

// Prompter is the operator side of a guided session.
type Prompter interface {
	Ask(label string) (string, error)
	Confirm(label string) (bool, error)
	Show(text string)
}

type Options struct {
	// Interactive lets the operator change the search string and confirm matches.
	Interactive bool
	// OnlyMissing skips pairs that already hold a yes or no.
	OnlyMissing bool
	// SkipFailed leaves a pair unknown when its search fails instead of aborting.
	SkipFailed bool
}

// Stats counts what a ComputeAll run did.
type Stats struct {
	Pairs   int `json:"pairs"`
	Found   int `json:"found"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Engine struct {
	search   tools.Searcher
	prompter Prompter
	opts     Options
	logger   zerolog.Logger

	// Progress, when set, is called after each pair.
	Progress func(done, total int)
}

// NewEngine returns an engine searching with search. prompter may be nil for
// non-interactive runs.
func NewEngine(search tools.Searcher, prompter Prompter, opts Options, log zerolog.Logger) *Engine {
	return &Engine{
		search:   search,
		prompter: prompter,
		opts:     opts,
		logger:   logger.Component(log, "xref"),
	}
}

// ComputeAll updates the cross-reference of every document to every other
// document, in catalog order. A document is never checked against itself.
// Documents whose file is gone are not searched; their pairs are counted as
// skipped and keep their cached values.
func (e *Engine) ComputeAll(ctx context.Context, docs []*document.Document) (Stats, error) {
	var stats Stats
	if e.opts.Interactive && e.prompter == nil {
		return stats, errors.New("guided cross-referencing needs an operator prompt")
	}

	e.logger.Info().Int("documents", len(docs)).Msg("Computing crossrefs")
	total := len(docs) * (len(docs) - 1)

	for _, doc := range docs {
		missing := isMissing(doc.Path)
		if missing {
			e.logger.Warn().Str("document", doc.Name).Str("file", doc.Filename).Msg("File is gone, not searching it")
		}
		for _, other := range docs {
			if other == doc {
				continue
			}
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.Pairs++

			if missing {
				stats.Skipped++
			} else if e.opts.OnlyMissing && doc.CrossRefs.Get(other.Name) != document.MentionUnknown {
				stats.Skipped++
			} else if err := e.Update(ctx, doc, other.Name, other.SearchTerm()); err != nil {
				if !e.opts.SkipFailed || !tools.IsInvocationError(err) {
					return stats, err
				}
				e.logger.Warn().Err(err).
					Str("document", doc.Name).
					Str("target", other.Name).
					Msg("Leaving crossref unknown")
				stats.Failed++
			} else if doc.CrossRefs.Get(other.Name) == document.MentionYes {
				stats.Found++
			}

			if e.Progress != nil {
				e.Progress(stats.Pairs, total)
			}
		}
	}
	return stats, nil
}

// Update searches doc for search and records the outcome under name. On error
// the entry is left as it was.
func (e *Engine) Update(ctx context.Context, doc *document.Document, name, search string) error {
	if e.opts.Interactive {
		e.logger.Info().Str("target", search).Str("document", doc.Name).Msg("Searching for crossrefs")
		replacement, err := e.prompter.Ask("Change searched name (leave blank to keep)")
		if err != nil {
			return fmt.Errorf("failed to read search string for %s: %w", doc.Filename, err)
		}
		if replacement != "" {
			search = replacement
			e.logger.Info().Str("target", search).Str("document", doc.Name).Msg("Now searching for crossrefs")
		}
	} else {
		e.logger.Debug().Str("target", search).Str("document", doc.Name).Msg("Searching for crossrefs")
	}

	occurrences, err := e.search.SearchOccurrences(ctx, search, doc.Path)
	if err != nil {
		return fmt.Errorf("failed to search %s for %q: %w", doc.Filename, search, err)
	}
	found := occurrences != ""

	if e.opts.Interactive {
		if found {
			e.logger.Info().Msg("Occurrences found")
			e.prompter.Show(occurrences)
			found, err = e.prompter.Confirm("Is it a crossref")
			if err != nil {
				return fmt.Errorf("failed to read confirmation for %s: %w", doc.Filename, err)
			}
		} else {
			e.logger.Info().Msg("No occurrences found")
		}
	}

	doc.CrossRefs.Set(name, document.MentionOf(found))
	e.logger.Debug().
		Str("target", name).
		Str("document", doc.Name).
		Bool("crossref", found).
		Msg("Recorded crossref")
	return nil
}

func isMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
