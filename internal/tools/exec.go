package tools

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCountPrefix starts the pdftk dump_data line carrying the page count.
const PageCountPrefix = "NumberOfPages:"

// Pdftk counts pages with `pdftk <file> dump_data`.
type Pdftk struct {
	Bin     string
	Timeout time.Duration
}

func (p *Pdftk) PageCount(ctx context.Context, path string) (int, error) {
	stdout, err := run(ctx, p.Timeout, p.Bin, path, "dump_data")
	if err != nil {
		return 0, &InvocationError{Tool: p.Bin, Path: path, Err: err}
	}
	pages, err := ParsePageCount(stdout)
	if err != nil {
		return 0, &InvocationError{Tool: p.Bin, Path: path, Err: err}
	}
	return pages, nil
}

// ParsePageCount extracts the page count from pdftk dump_data output.
func ParsePageCount(output string) (int, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, PageCountPrefix) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, PageCountPrefix))
		pages, err := strconv.Atoi(value)
		if err != nil || pages < 0 {
			return 0, fmt.Errorf("unparsable page count %q", value)
		}
		return pages, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read tool output: %w", err)
	}
	return 0, fmt.Errorf("no %s line in tool output", PageCountPrefix)
}

// Pdfcpu counts pages in-process. A call that outlives Timeout or ctx is
// abandoned and reported as an InvocationError.
type Pdfcpu struct {
	Timeout time.Duration

	// count defaults to api.PageCountFile.
	count func(path string) (int, error)
}

type pageCountResult struct {
	pages int
	err   error
}

func (p *Pdfcpu) PageCount(ctx context.Context, path string) (int, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return 0, &InvocationError{Tool: "pdfcpu", Path: path, Err: err}
	}

	count := p.count
	if count == nil {
		count = api.PageCountFile
	}
	done := make(chan pageCountResult, 1)
	go func() {
		pages, err := count(path)
		done <- pageCountResult{pages: pages, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, &InvocationError{Tool: "pdfcpu", Path: path, Err: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			return 0, &InvocationError{Tool: "pdfcpu", Path: path, Err: res.err}
		}
		return res.pages, nil
	}
}

// Pdfgrep searches PDF text with pdfgrep. Exit status 1 means no match.
type Pdfgrep struct {
	Bin        string
	Timeout    time.Duration
	Regex      bool
	IgnoreCase bool
}

func (g *Pdfgrep) Args(pattern, path string) []string {
	args := make([]string, 0, 5)
	if !g.Regex {
		args = append(args, "--fixed-strings")
	}
	if g.IgnoreCase {
		args = append(args, "--ignore-case")
	}
	return append(args, "--", pattern, path)
}

func (g *Pdfgrep) SearchOccurrences(ctx context.Context, pattern, path string) (string, error) {
	stdout, err := run(ctx, g.Timeout, g.Bin, g.Args(pattern, path)...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", &InvocationError{Tool: g.Bin, Path: path, Err: err}
	}
	return stdout, nil
}

// run executes bin under a timeout and returns stdout. Timeouts surface as
// context.DeadlineExceeded, non-zero exits as *exec.ExitError with stderr attached.
func run(ctx context.Context, timeout time.Duration, bin string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", &exitError{ExitError: exitErr, stderr: msg}
			}
		}
		return "", err
	}
	return stdout.String(), nil
}

type exitError struct {
	*exec.ExitError
	stderr string
}

func (e *exitError) Error() string {
	return fmt.Sprintf("%v: %s", e.ExitError, e.stderr)
}

func (e *exitError) Unwrap() error {
	return e.ExitError
}
