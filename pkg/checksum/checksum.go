// Package checksum computes the content checksums recorded in the
// installation map. Checksums are hex md5, matching the ledger's wire
// format; conflict detection uses a whitespace-stripped variant so that
// purely cosmetic edits never register as content changes.
package checksum

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"unicode"

	"github.com/arthur-debert/opus/pkg/types"
)

// Empty is the checksum of empty content, used as the sentinel when a
// destination has no recorded checksum from a previous run.
const Empty = "d41d8cd98f00b204e9800998ecf8427e"

// Bytes returns the hex md5 checksum of content.
func Bytes(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}

// Stripped returns the checksum of content with every whitespace
// character removed, so two files differing only in whitespace hash
// identically.
func Stripped(content []byte) string {
	out := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, content)
	return Bytes(out)
}

// File returns the checksum of the file at path.
func File(fs types.FS, path string) (string, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Bytes(content), nil
}

// FileStripped returns the whitespace-stripped checksum of the file at path.
func FileStripped(fs types.FS, path string) (string, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Stripped(content), nil
}

// FileTolerant returns the checksum of the file at path, treating any
// read failure as empty content. Conflict resolution must not block on
// a transient read error.
func FileTolerant(fs types.FS, path string) string {
	sum, err := File(fs, path)
	if err != nil {
		return Empty
	}
	return sum
}
