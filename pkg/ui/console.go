// Package ui provides the console implementations of the installer's
// output and prompt interfaces.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/mattn/go-isatty"
)

// ConsoleOutput writes lines to a writer, stdout by default.
type ConsoleOutput struct {
	w io.Writer
}

// NewConsoleOutput creates a console output sink.
func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

// WriteLine writes one line to the sink.
func (o *ConsoleOutput) WriteLine(s string) {
	fmt.Fprintln(o.w, s)
}

// ConsolePrompter reads free-form answers from an interactive terminal.
// On a non-interactive stdin every question fails, so conflicts that need
// a human surface as errors instead of being silently decided.
type ConsolePrompter struct {
	in     *bufio.Reader
	out    io.Writer
	isTerm bool
}

// NewConsolePrompter creates a prompter over stdin/stdout.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		isTerm: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// Ask presents a question and returns the trimmed answer line.
func (p *ConsolePrompter) Ask(question string) (string, error) {
	if !p.isTerm {
		return "", errors.New(errors.ErrPromptUnavailable, "stdin is not a terminal")
	}
	fmt.Fprint(p.out, question)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// AutoApprove answers every question with its default, for --yes runs.
type AutoApprove struct{}

// Ask returns the empty answer, taking each prompt's default.
func (AutoApprove) Ask(string) (string, error) {
	return "", nil
}
