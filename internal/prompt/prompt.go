// Package prompt reads operator answers line by line for guided sessions.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when the input ends before an answer was read.
var ErrInputClosed = errors.New("input closed")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints the label and returns the next input line without its line ending
// and surrounding spaces.
func (p *Prompter) Ask(label string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "  [+] %s: ", label); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question until the answer is y/Y or n/N.
func (p *Prompter) Confirm(label string) (bool, error) {
	for {
		answer, err := p.Ask(label + " [y/n]")
		if err != nil {
			return false, err
		}
		switch answer {
		case "y", "Y":
			return true, nil
		case "n", "N":
			return false, nil
		}
		fmt.Fprintln(p.out, "  please answer y or n")
	}
}

// Show prints a block of text, such as matched lines, before a question.
func (p *Prompter) Show(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	fmt.Fprintln(p.out, text)
}
