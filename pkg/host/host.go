// Package host bridges the installer core to the package manager. The
// core consumes the types.Host interface; this package provides a
// directory-backed implementation that scans vendor-tree manifests, which
// is what the standalone CLI drives.
package host

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/rs/zerolog"
)

// ManifestName is the per-package manifest file carrying the opus entry.
const ManifestName = "opus.json"

// manifest is the on-disk package manifest shape.
type manifest struct {
	Name    string                 `json:"name"`
	Require map[string]string      `json:"require"`
	Opus    map[string]interface{} `json:"opus"`
}

// DirectoryHost enumerates installed packages by scanning a vendor
// directory for manifests, up to two levels deep to cover org/name
// package layouts.
type DirectoryHost struct {
	fs        types.FS
	vendorDir string
	log       zerolog.Logger

	packages map[string]types.Package
	requires map[string][]types.DependencyLink
}

// NewDirectoryHost scans vendorDir and returns a host over its packages.
func NewDirectoryHost(fs types.FS, vendorDir string) (*DirectoryHost, error) {
	h := &DirectoryHost{
		fs:        fs,
		vendorDir: vendorDir,
		log:       logging.GetLogger("host"),
		packages:  make(map[string]types.Package),
		requires:  make(map[string][]types.DependencyLink),
	}
	if err := h.scan(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *DirectoryHost) scan() error {
	entries, err := h.fs.ReadDir(h.vendorDir)
	if err != nil {
		// No vendor dir means no installed packages.
		h.log.Debug().Str("dir", h.vendorDir).Msg("vendor directory missing, no packages")
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(h.vendorDir, entry.Name())
		if ok, err := h.loadManifest(dir); err != nil {
			return err
		} else if ok {
			continue
		}

		// Possibly an org directory holding package directories.
		children, err := h.fs.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, child := range children {
			if !child.IsDir() {
				continue
			}
			if _, err := h.loadManifest(filepath.Join(dir, child.Name())); err != nil {
				return err
			}
		}
	}

	h.log.Debug().Int("packages", len(h.packages)).Msg("vendor tree scanned")
	return nil
}

// loadManifest reads a package manifest if present, returning whether the
// directory held one.
func (h *DirectoryHost) loadManifest(dir string) (bool, error) {
	path := filepath.Join(dir, ManifestName)
	content, err := h.fs.ReadFile(path)
	if err != nil {
		return false, nil
	}

	var m manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigInvalid, "parsing manifest %s", path)
	}
	if m.Name == "" {
		return false, errors.Newf(errors.ErrConfigInvalid, "manifest %s has no package name", path)
	}

	h.packages[m.Name] = types.Package{
		Name:        m.Name,
		InstallRoot: dir,
		Declared:    m.Opus,
	}

	links := make([]types.DependencyLink, 0, len(m.Require))
	targets := make([]string, 0, len(m.Require))
	for target := range m.Require {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	for _, target := range targets {
		links = append(links, types.DependencyLink{Source: m.Name, Target: target})
	}
	h.requires[m.Name] = links

	return true, nil
}

// Packages returns every installed package, sorted by name.
func (h *DirectoryHost) Packages() ([]types.Package, error) {
	names := make([]string, 0, len(h.packages))
	for name := range h.packages {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.Package, 0, len(names))
	for _, name := range names {
		out = append(out, h.packages[name])
	}
	return out, nil
}

// Package looks up one installed package by name.
func (h *DirectoryHost) Package(name string) (types.Package, error) {
	pkg, ok := h.packages[name]
	if !ok {
		return types.Package{}, errors.Newf(errors.ErrConfigInvalid, "package %s is not installed", name)
	}
	return pkg, nil
}

// Dependencies returns the declared requirement links of a package.
func (h *DirectoryHost) Dependencies(name string) ([]types.DependencyLink, error) {
	return h.requires[name], nil
}

// Project describes the root project as read from its own manifest.
type Project struct {
	Name     string
	Declared map[string]interface{}
}

// LoadProject reads the project's root manifest. A missing manifest is
// not an error: the project simply has no name and no declared options.
func LoadProject(fs types.FS, projectRoot string) (Project, error) {
	path := filepath.Join(projectRoot, ManifestName)
	content, err := fs.ReadFile(path)
	if err != nil {
		return Project{}, nil
	}

	var m manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return Project{}, errors.Wrapf(err, errors.ErrConfigInvalid, "parsing project manifest %s", path)
	}
	return Project{Name: m.Name, Declared: m.Opus}, nil
}
