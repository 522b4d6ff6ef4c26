package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/morozRed/pdfxref/internal/tools"
)

// FilenameFormatError reports a filename that does not follow
// <author><yy>_..._<name><ext>.
type FilenameFormatError struct {
	Filename string
	Reason   string
}

func (e *FilenameFormatError) Error() string {
	return fmt.Sprintf("unexpected filename %q: %s", e.Filename, e.Reason)
}

// Identity is what a filename alone says about a document.
type Identity struct {
	Name   string
	Author string
	Year   int
	Free   bool
}

// Parser derives document identities from filenames.
type Parser struct {
	Extension     string
	NonFreeMarker string
	// Century is added to the two-digit year; 2000 maps "19" to 2019.
	Century int
}

// ParseFilename splits the filename without its extension on underscores. The
// last segment is the display name; the first segment ends with a two-digit
// year preceded by the author. Names that are not valid UTF-8 are rejected
// because the metadata file cannot store them byte for byte.
func (p Parser) ParseFilename(filename string) (Identity, error) {
	if !utf8.ValidString(filename) {
		return Identity{}, &FilenameFormatError{Filename: filename, Reason: "filename is not valid UTF-8"}
	}
	stem := strings.TrimSuffix(filename, p.Extension)
	if stem == "" {
		return Identity{}, &FilenameFormatError{Filename: filename, Reason: "empty name"}
	}

	segments := strings.Split(stem, "_")
	if len(segments) < 2 {
		return Identity{}, &FilenameFormatError{Filename: filename, Reason: "no '_' separator"}
	}

	head := segments[0]
	if len(head) < 3 {
		return Identity{}, &FilenameFormatError{Filename: filename, Reason: "first segment must be <author><yy>"}
	}
	yy := head[len(head)-2:]
	if !isDigit(yy[0]) || !isDigit(yy[1]) {
		return Identity{}, &FilenameFormatError{Filename: filename, Reason: fmt.Sprintf("year %q is not two digits", yy)}
	}

	name := segments[len(segments)-1]
	if name == "" {
		return Identity{}, &FilenameFormatError{Filename: filename, Reason: "empty display name"}
	}

	return Identity{
		Name:   name,
		Author: head[:len(head)-2],
		Year:   p.Century + int(yy[0]-'0')*10 + int(yy[1]-'0'),
		Free:   !strings.Contains(filename, p.NonFreeMarker),
	}, nil
}

// New creates a fresh record for dir/filename. The filename is parsed first so
// malformed names fail without running the page-count tool.
func (p Parser) New(ctx context.Context, dir, filename string, counter tools.PageCounter) (*Document, error) {
	id, err := p.ParseFilename(filename)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, filename)
	pages, err := counter.PageCount(ctx, path)
	if err != nil {
		return nil, err
	}

	return &Document{
		Dir:      dir,
		Filename: filename,
		Path:     path,
		Name:     id.Name,
		Author:   id.Author,
		Year:     id.Year,
		Pages:    pages,
		Free:     id.Free,
	}, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
