// Package testutil provides shared helpers for tests: scripted prompt and
// output doubles and small filesystem builders.
package testutil

import (
	"errors"
	"testing"

	"github.com/arthur-debert/opus/pkg/types"
	"github.com/stretchr/testify/require"
)

// ScriptedPrompter replays canned answers and records every question it
// was asked.
type ScriptedPrompter struct {
	Answers   []string
	Questions []string
}

// Ask implements types.Prompter.
func (p *ScriptedPrompter) Ask(question string) (string, error) {
	p.Questions = append(p.Questions, question)
	if len(p.Answers) == 0 {
		return "", errors.New("no scripted answer left")
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

// FailingPrompter simulates a non-interactive session: every question
// fails.
type FailingPrompter struct{}

// Ask implements types.Prompter.
func (FailingPrompter) Ask(string) (string, error) {
	return "", errors.New("stdin is not a terminal")
}

// BufferOutput collects written lines for assertions.
type BufferOutput struct {
	Lines []string
}

// WriteLine implements types.Output.
func (o *BufferOutput) WriteLine(s string) {
	o.Lines = append(o.Lines, s)
}

// WriteFile writes a file through an FS, failing the test on error.
func WriteFile(t *testing.T, fs types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
}
