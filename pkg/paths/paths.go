// Package paths provides the path normalization helpers used throughout
// the installer core. Ledger keys and mapping destinations are logical,
// forward-slash, project-root-relative paths regardless of platform.
package paths

import (
	"path"
	"path/filepath"
	"strings"
)

// Separators recognized when trimming and normalizing logical paths.
const separators = "/\\"

// Trim removes leading and trailing path separators.
func Trim(p string) string {
	return strings.Trim(p, separators)
}

// TrimLeading removes leading path separators.
func TrimLeading(p string) string {
	return strings.TrimLeft(p, separators)
}

// TrimTrailing removes trailing path separators.
func TrimTrailing(p string) string {
	return strings.TrimRight(p, separators)
}

// HasTrailingSeparator reports whether p names a directory target by
// ending in a path separator.
func HasTrailingSeparator(p string) bool {
	if p == "" {
		return false
	}
	last := p[len(p)-1]
	return last == '/' || last == '\\'
}

// Normalize converts p to forward-slash form and collapses redundant
// separators and dot segments. A trailing separator is not preserved;
// use HasTrailingSeparator before normalizing when it matters.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// ProjectRelative resolves an absolute filesystem path to the logical
// project-relative form used as a ledger key: forward-slash separated,
// relative to root, with no leading separator. Paths outside root are
// returned normalized but unchanged otherwise.
func ProjectRelative(abs, root string) string {
	abs = filepath.ToSlash(abs)
	root = TrimTrailing(filepath.ToSlash(root))
	if root != "" && strings.HasPrefix(abs, root+"/") {
		return Trim(abs[len(root)+1:])
	}
	if abs == root {
		return ""
	}
	return TrimLeading(abs)
}

// Join joins logical path segments with forward slashes, skipping
// empty segments.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = Trim(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// Depth returns the number of segments in a logical path. The empty
// path has depth zero.
func Depth(p string) int {
	p = Trim(p)
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}
