package resolver

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// renderDiff produces a unified diff between the file currently on disk
// and the incoming package content. Lines are normalized first so that
// whitespace and newline-style differences never show up as changes.
func (r *Resolver) renderDiff(source, dest string) (string, error) {
	incoming, err := r.fs.ReadFile(source)
	if err != nil {
		return "", err
	}
	current, err := r.fs.ReadFile(r.abs(dest))
	if err != nil {
		return "", err
	}

	diff := difflib.UnifiedDiff{
		A:        normalizeLines(current),
		B:        normalizeLines(incoming),
		FromFile: dest,
		ToFile:   source,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// normalizeLines splits content into lines with normalized newlines and
// trimmed trailing whitespace, each terminated by a single \n as difflib
// expects.
func normalizeLines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimRight(line, " \t") + "\n"
	}
	return lines
}
