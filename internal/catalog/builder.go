// Package catalog reconciles the cached metadata of a document directory with
// the files currently in it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/pdfxref/internal/cache"
	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/ignore"
	"github.com/morozRed/pdfxref/internal/logger"
	"github.com/morozRed/pdfxref/internal/tools"
	"github.com/rs/zerolog"
)

// Options selects how a build treats the cache, the operator and failures.
type Options struct {
	// SkipCache ignores the metadata file and parses every document again.
	SkipCache bool
	// Interactive prompts for every unset descriptive field after the merge.
	Interactive bool
	// SkipFailed leaves out files whose record cannot be built instead of failing.
	SkipFailed bool
}

// FileFailure is a file that was left out of the catalog.
type FileFailure struct {
	Filename string `json:"filename"`
	Err      error  `json:"-"`
	Message  string `json:"error"`
}

// Result is the merged catalog plus what the merge did.
type Result struct {
	Documents []*document.Document
	// Cached counts records loaded from the metadata file.
	Cached int
	// Added lists files parsed for the first time, in directory order.
	Added []string
	// Stale lists cached records whose file is gone; they are kept.
	Stale  []string
	Failed []FileFailure
}

// Builder builds catalogs. Asker is only used by interactive builds and
// Progress, when set, is called after each new file.
type Builder struct {
	Parser   document.Parser
	Counter  tools.PageCounter
	Asker    document.Asker
	Progress func(filename string, done, total int)
	logger   zerolog.Logger
}

func NewBuilder(parser document.Parser, counter tools.PageCounter, asker document.Asker, log zerolog.Logger) *Builder {
	return &Builder{
		Parser:  parser,
		Counter: counter,
		Asker:   asker,
		logger:  logger.Component(log, "catalog"),
	}
}

// Build loads the cache of dir, appends a fresh record for every document file
// not in it and, when asked, completes records interactively. Cached records are
// reused as they are; records of deleted files are retained. Nothing is saved.
func (b *Builder) Build(ctx context.Context, dir string, opts Options) (*Result, error) {
	b.logger.Info().Str("dir", dir).Msg("Loading PDF info")

	var cached []*document.Document
	if opts.SkipCache {
		b.logger.Debug().Msg("Ignoring cache")
	} else {
		var err error
		cached, err = cache.Load(dir)
		if err != nil {
			return nil, err
		}
		if cached == nil {
			b.logger.Debug().Msg("No metadata found, parsing all PDFs")
		} else {
			b.logger.Debug().Int("records", len(cached)).Msg("Done loading metadata")
		}
	}

	files, err := b.ListDocuments(dir)
	if err != nil {
		return nil, err
	}

	diff := Reconcile(cached, files)
	result := &Result{
		Documents: append(make([]*document.Document, 0, len(cached)+len(diff.New)), cached...),
		Cached:    len(cached),
		Stale:     diff.Stale,
	}

	b.logger.Debug().Int("new", len(diff.New)).Msg("Loading non cached PDFs")
	for i, filename := range diff.New {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := b.Parser.New(ctx, dir, filename, b.Counter)
		if b.Progress != nil {
			b.Progress(filename, i+1, len(diff.New))
		}
		if err != nil {
			if !opts.SkipFailed || !isFileError(err) {
				return nil, fmt.Errorf("failed to catalog %s: %w", filename, err)
			}
			b.logger.Warn().Err(err).Str("file", filename).Msg("Skipping document")
			result.Failed = append(result.Failed, FileFailure{Filename: filename, Err: err, Message: err.Error()})
			continue
		}
		b.logger.Debug().Str("file", filename).Int("pages", doc.Pages).Msg("Parsed document")
		result.Documents = append(result.Documents, doc)
		result.Added = append(result.Added, filename)
	}

	for _, filename := range diff.Stale {
		b.logger.Debug().Str("file", filename).Msg("Keeping cached record of missing file")
	}

	if opts.Interactive {
		if b.Asker == nil {
			return nil, errors.New("interactive build needs an operator prompt")
		}
		b.logger.Debug().Msg("Entering guided mode")
		for _, doc := range result.Documents {
			if err := doc.Complete(b.Asker, b.logger); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// ListDocuments returns the names of regular files in dir carrying the parser's
// extension and not excluded by the directory's ignore rules, in lexical order.
func (b *Builder) ListDocuments(dir string) ([]string, error) {
	matcher, err := ignore.Load(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, b.Parser.Extension) || matcher.ShouldIgnore(name) {
			continue
		}
		if !isRegularFile(filepath.Join(dir, name), entry) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

// isRegularFile accepts regular files and symlinks resolving to one.
func isRegularFile(path string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isFileError(err error) bool {
	var formatErr *document.FilenameFormatError
	return errors.As(err, &formatErr) || tools.IsInvocationError(err)
}
