// Package copier materializes resolved source→destination pairs into the
// project tree, recording provenance in the installation map as it goes
// and collecting content conflicts instead of overwriting edited files.
package copier

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/opus/pkg/checksum"
	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/ledger"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/paths"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/rs/zerolog"
)

// Result aggregates one copy operation's outcome: checksum updates to
// merge into the ledger and conflicts pending resolution.
type Result struct {
	// Updates maps project-relative destination paths to the checksum of
	// the freshly copied content.
	Updates map[string]string

	// Conflicts maps absolute source paths to project-relative destination
	// paths whose existing content differs from the incoming content.
	Conflicts map[string]string
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		Updates:   make(map[string]string),
		Conflicts: make(map[string]string),
	}
}

// Merge folds other's updates and conflicts into r.
func (r *Result) Merge(other *Result) {
	for dest, sum := range other.Updates {
		r.Updates[dest] = sum
	}
	for source, dest := range other.Conflicts {
		r.Conflicts[source] = dest
	}
}

// Copier copies a package's mapped files into the project tree.
type Copier struct {
	fs          types.FS
	ledger      *ledger.InstallationMap
	pkg         types.Package
	projectRoot string
	log         zerolog.Logger
}

// New creates a copier for one package operation. Sources resolve against
// the package's install root, destinations against projectRoot.
func New(fsImpl types.FS, led *ledger.InstallationMap, pkg types.Package, projectRoot string) *Copier {
	return &Copier{
		fs:          fsImpl,
		ledger:      led,
		pkg:         pkg,
		projectRoot: paths.TrimTrailing(filepath.ToSlash(projectRoot)),
		log:         logging.GetLogger("copier"),
	}
}

// Copy materializes one {source: destination} pair for the given owner,
// recursing into directories. Ownership is claimed in the ledger for every
// touched path, including destinations left pending in Conflicts.
func (c *Copier) Copy(owner, source, dest string) (*Result, error) {
	abs, info, err := c.resolveSource(source)
	if err != nil {
		return nil, err
	}

	switch {
	case info.Mode().IsRegular():
		return c.copyFile(owner, abs, dest)
	case info.IsDir():
		return c.copyDir(owner, abs, dest)
	default:
		return nil, errors.Newf(errors.ErrSourceNotFound,
			"source %s of package %s is not a regular file or directory", source, c.pkg.Name).
			WithDetail("package", c.pkg.Name)
	}
}

// resolveSource resolves a declared source path against the package's
// install root. Stat follows symlinks; broken links and loops surface as
// a missing source.
func (c *Copier) resolveSource(source string) (string, fs.FileInfo, error) {
	abs := source
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(c.pkg.InstallRoot, source)
	}
	abs = filepath.ToSlash(abs)

	info, err := c.fs.Stat(abs)
	if err != nil {
		return "", nil, errors.Wrapf(err, errors.ErrSourceNotFound,
			"source %s of package %s not found", source, c.pkg.Name).
			WithDetail("package", c.pkg.Name)
	}
	return abs, info, nil
}

func (c *Copier) copyFile(owner, sourceAbs, dest string) (*Result, error) {
	result := NewResult()

	targetDir, name := c.splitDestination(sourceAbs, dest)
	if err := c.ensureDirectory(owner, targetDir); err != nil {
		return nil, err
	}

	destRel := paths.Join(targetDir, name)
	destAbs := c.abs(destRel)

	// Ownership is claimed even while a conflict is pending resolution.
	c.ledger.AddOwner(destRel, owner)

	if existing, err := c.fs.Stat(destAbs); err == nil {
		if existing.IsDir() {
			return nil, errors.Newf(errors.ErrDirConflict,
				"%s exists and is a directory", destRel)
		}
		if !writable(existing) {
			return nil, errors.Newf(errors.ErrPermission, "cannot write %s", destRel)
		}

		sourceSum, err := checksum.FileStripped(c.fs, sourceAbs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceNotFound,
				"reading source %s of package %s", sourceAbs, c.pkg.Name)
		}
		destSum, err := checksum.FileStripped(c.fs, destAbs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPermission, "reading %s", destRel)
		}

		if sourceSum != destSum {
			c.log.Debug().
				Str("source", sourceAbs).
				Str("dest", destRel).
				Msg("content conflict recorded")
			result.Conflicts[sourceAbs] = destRel
			return result, nil
		}
	}

	content, err := c.fs.ReadFile(sourceAbs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceNotFound,
			"reading source %s of package %s", sourceAbs, c.pkg.Name)
	}
	if err := c.fs.WriteFile(destAbs, content, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPermission, "writing %s", destRel)
	}

	result.Updates[destRel] = checksum.Bytes(content)
	c.log.Debug().
		Str("owner", owner).
		Str("dest", destRel).
		Msg("file copied")
	return result, nil
}

func (c *Copier) copyDir(owner, sourceAbs, dest string) (*Result, error) {
	destRel := paths.Normalize(paths.Trim(dest))
	if paths.HasTrailingSeparator(dest) {
		destRel = paths.Join(destRel, filepath.Base(sourceAbs))
	}
	if err := c.ensureDirectory(owner, destRel); err != nil {
		return nil, err
	}

	entries, err := c.fs.ReadDir(sourceAbs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceNotFound,
			"listing source directory %s of package %s", sourceAbs, c.pkg.Name)
	}

	result := NewResult()
	for _, entry := range entries {
		child, err := c.Copy(owner,
			filepath.ToSlash(filepath.Join(sourceAbs, entry.Name())),
			paths.Join(destRel, entry.Name()))
		if err != nil {
			return nil, err
		}
		result.Merge(child)
	}
	return result, nil
}

// splitDestination decides the target directory and file name for a
// regular-file source: a destination naming a directory (trailing
// separator or an existing directory) keeps the source's base name,
// otherwise the destination's own base name is used.
func (c *Copier) splitDestination(sourceAbs, dest string) (targetDir, name string) {
	destRel := paths.Normalize(paths.Trim(dest))

	if paths.HasTrailingSeparator(dest) {
		return destRel, filepath.Base(sourceAbs)
	}
	if info, err := c.fs.Stat(c.abs(destRel)); err == nil && info.IsDir() {
		return destRel, filepath.Base(sourceAbs)
	}
	dir := paths.Normalize(filepath.ToSlash(filepath.Dir(destRel)))
	if dir == "." {
		dir = ""
	}
	return dir, filepath.Base(destRel)
}

// ensureDirectory creates the destination directory and any missing
// parents, recording each component in the ledger under owner.
func (c *Copier) ensureDirectory(owner, dirRel string) error {
	dirRel = paths.Trim(dirRel)
	if dirRel == "" {
		return nil
	}

	partial := ""
	for _, segment := range strings.Split(dirRel, "/") {
		partial = paths.Join(partial, segment)
		abs := c.abs(partial)

		info, err := c.fs.Stat(abs)
		switch {
		case err == nil && !info.IsDir():
			return errors.Newf(errors.ErrDirConflict,
				"%s exists and is not a directory", partial)
		case err == nil && !writable(info):
			return errors.Newf(errors.ErrPermission,
				"directory %s is not writable", partial)
		case err != nil:
			if mkErr := c.fs.MkdirAll(abs, 0755); mkErr != nil {
				return errors.Wrapf(mkErr, errors.ErrPermission,
					"creating directory %s", partial)
			}
		}

		c.ledger.AddOwner(partial, owner)
	}
	return nil
}

func (c *Copier) abs(rel string) string {
	if rel == "" {
		return c.projectRoot
	}
	return c.projectRoot + "/" + rel
}

func writable(info fs.FileInfo) bool {
	return info.Mode().Perm()&0200 != 0
}
