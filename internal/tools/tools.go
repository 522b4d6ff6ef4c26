// Package tools wraps the external programs pdfxref depends on: a page-count
// query and a text search inside a PDF.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/morozRed/pdfxref/internal/config"
)

// PageCounter returns the number of pages of the document at path.
type PageCounter interface {
	PageCount(ctx context.Context, path string) (int, error)
}

// Searcher returns the raw lines of the document at path that match pattern.
// An empty string means no occurrence.
type Searcher interface {
	SearchOccurrences(ctx context.Context, pattern, path string) (string, error)
}

// Adapter is the full set of external capabilities.
type Adapter interface {
	PageCounter
	Searcher
}

// InvocationError reports an external tool that is missing, crashed, timed out
// or produced output that could not be understood.
type InvocationError struct {
	Tool string
	Path string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s failed on %s: %v", e.Tool, e.Path, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsInvocationError reports whether err is or wraps an InvocationError.
func IsInvocationError(err error) bool {
	var invErr *InvocationError
	return errors.As(err, &invErr)
}

type toolbox struct {
	PageCounter
	Searcher
}

// New builds the adapter selected by the tools configuration.
func New(cfg config.ToolsConfig) (Adapter, error) {
	var counter PageCounter
	switch cfg.PageCounter {
	case config.PageCounterPdftk:
		counter = &Pdftk{Bin: cfg.Pdftk, Timeout: cfg.Timeout}
	case config.PageCounterPdfcpu:
		counter = &Pdfcpu{Timeout: cfg.Timeout}
	default:
		return nil, fmt.Errorf("unsupported page counter %q", cfg.PageCounter)
	}

	return toolbox{
		PageCounter: counter,
		Searcher: &Pdfgrep{
			Bin:        cfg.Pdfgrep,
			Timeout:    cfg.Timeout,
			Regex:      cfg.Regex,
			IgnoreCase: cfg.IgnoreCase,
		},
	}, nil
}

// Binary describes whether a required executable resolves on PATH.
type Binary struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
}

// Binaries lists the executables the configuration needs, resolved on PATH.
func Binaries(cfg config.ToolsConfig) []Binary {
	names := []string{cfg.Pdfgrep}
	if cfg.PageCounter == config.PageCounterPdftk {
		names = append([]string{cfg.Pdftk}, names...)
	}

	out := make([]Binary, 0, len(names))
	for _, name := range names {
		bin := Binary{Name: name}
		if path, err := exec.LookPath(name); err == nil {
			bin.Path = path
			bin.Available = true
		}
		out = append(out, bin)
	}
	return out
}
