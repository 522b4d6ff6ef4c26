// Package cache persists cataloged documents to the sidecar metadata file,
// one encoded record per line.
package cache

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/morozRed/pdfxref/internal/document"
	"github.com/morozRed/pdfxref/internal/fileutil"
)

// MetadataFile is the sidecar file name inside the document directory.
const MetadataFile = "metadata"

// CorruptionError reports a metadata file with a line that cannot be decoded.
type CorruptionError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupt metadata %s line %d: %v", e.Path, e.Line, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// IsCorruptionError reports whether err is or wraps a CorruptionError.
func IsCorruptionError(err error) bool {
	var corruptErr *CorruptionError
	return errors.As(err, &corruptErr)
}

// Path returns the metadata file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, MetadataFile)
}

// Exists reports whether dir already has a metadata file.
func Exists(dir string) bool {
	info, err := os.Stat(Path(dir))
	return err == nil && !info.IsDir()
}

// Load reads every record of dir's metadata file in file order. A missing file
// yields no records. A single undecodable line fails the whole load and no
// record is returned, so cached manual work is never silently dropped.
func Load(dir string) ([]*document.Document, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	docs := make([]*document.Document, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		doc, err := document.Decode(line)
		if err != nil {
			return nil, &CorruptionError{Path: path, Line: lineNo, Err: err}
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, &CorruptionError{Path: path, Line: lineNo + 1, Err: err}
	}
	return docs, nil
}

// Save replaces dir's metadata file with one line per record. The file is
// written to a temp file and renamed into place; it is left untouched when the
// content did not change.
func Save(dir string, docs []*document.Document) error {
	var buf bytes.Buffer
	for _, doc := range docs {
		line, err := doc.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteIfChanged(Path(dir), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
