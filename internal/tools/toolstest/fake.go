// Package toolstest provides an in-memory tools.Adapter for tests.
package toolstest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/morozRed/pdfxref/internal/tools"
)

// Fake answers page counts from Pages and searches from Texts, both keyed by
// file base name. Searches are plain substring matches per line.
type Fake struct {
	Pages map[string]int
	Texts map[string]string
	// Fail makes every call on the named files return an InvocationError.
	Fail map[string]bool

	PageCalls   []string
	SearchCalls []SearchCall
}

type SearchCall struct {
	Pattern string
	File    string
}

func New() *Fake {
	return &Fake{
		Pages: make(map[string]int),
		Texts: make(map[string]string),
		Fail:  make(map[string]bool),
	}
}

func (f *Fake) PageCount(ctx context.Context, path string) (int, error) {
	name := filepath.Base(path)
	f.PageCalls = append(f.PageCalls, name)
	if f.Fail[name] {
		return 0, &tools.InvocationError{Tool: "fake", Path: path, Err: errors.New("tool crashed")}
	}
	pages, ok := f.Pages[name]
	if !ok {
		return 0, &tools.InvocationError{Tool: "fake", Path: path, Err: errors.New("no page count")}
	}
	return pages, nil
}

func (f *Fake) SearchOccurrences(ctx context.Context, pattern, path string) (string, error) {
	name := filepath.Base(path)
	f.SearchCalls = append(f.SearchCalls, SearchCall{Pattern: pattern, File: name})
	if f.Fail[name] {
		return "", &tools.InvocationError{Tool: "fake", Path: path, Err: errors.New("tool crashed")}
	}
	var matched []string
	for _, line := range strings.Split(f.Texts[name], "\n") {
		if pattern != "" && strings.Contains(line, pattern) {
			matched = append(matched, line+"\n")
		}
	}
	return strings.Join(matched, ""), nil
}
