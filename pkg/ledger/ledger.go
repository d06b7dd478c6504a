// Package ledger implements the persistent installation map: for every
// destination path the engine has touched, which packages currently claim
// it and the last-known content checksum. The map lives as a JSON file
// (opus.map) at the project root and is the only state that survives
// across installer invocations.
package ledger

import (
	"encoding/json"
	stderrors "errors"
	iofs "io/fs"
	"sort"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/paths"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/rs/zerolog"
)

// ChecksumKey is the reserved ledger key holding the checksum sub-map.
// No destination path can collide with it because ledger keys are
// normalized project-relative paths and this is not one.
const ChecksumKey = "__CHECKSUMS__"

// DefaultFileName is the ledger file name at the project root.
const DefaultFileName = "opus.map"

// InstallationMap tracks destination-path ownership and content checksums.
type InstallationMap struct {
	fs   types.FS
	path string
	log  zerolog.Logger

	owners    map[string]map[string]struct{}
	checksums map[string]string
}

// Load reads the ledger file at path. A missing file yields an empty map;
// an unparseable or unreadable file is fatal, since proceeding with a
// fabricated ledger would produce wrong ownership and cleanup decisions.
func Load(fs types.FS, path string) (*InstallationMap, error) {
	m := &InstallationMap{
		fs:        fs,
		path:      path,
		log:       logging.GetLogger("ledger"),
		owners:    make(map[string]map[string]struct{}),
		checksums: make(map[string]string),
	}

	content, err := fs.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, iofs.ErrNotExist) {
			m.log.Debug().Str("path", path).Msg("no ledger file, starting empty")
			return m, nil
		}
		return nil, errors.Wrapf(err, errors.ErrLedgerCorrupt, "reading ledger %s", path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrLedgerCorrupt, "parsing ledger %s", path)
	}

	for key, value := range raw {
		if key == ChecksumKey {
			if err := json.Unmarshal(value, &m.checksums); err != nil {
				return nil, errors.Wrapf(err, errors.ErrLedgerCorrupt, "parsing ledger checksums in %s", path)
			}
			continue
		}
		var names []string
		if err := json.Unmarshal(value, &names); err != nil {
			return nil, errors.Wrapf(err, errors.ErrLedgerCorrupt, "parsing ledger entry %q in %s", key, path)
		}
		set := make(map[string]struct{}, len(names))
		for _, name := range names {
			set[name] = struct{}{}
		}
		m.owners[paths.Trim(key)] = set
	}

	m.log.Debug().Str("path", path).Int("entries", len(m.owners)).Msg("ledger loaded")
	return m, nil
}

// Save writes the ledger back to its file. Owner lists are sorted lexically
// so repeated saves of the same state are byte-identical; the write goes
// through a temp file and rename so a crash cannot leave a torn ledger.
func (m *InstallationMap) Save() error {
	out := make(map[string]interface{}, len(m.owners)+1)
	for dest, set := range m.owners {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		out[dest] = names
	}
	out[ChecksumKey] = m.checksums

	content, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return errors.Wrap(err, errors.ErrLedgerWrite, "encoding ledger")
	}

	tmp := m.path + ".tmp"
	if err := m.fs.WriteFile(tmp, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrLedgerWrite, "writing ledger %s", tmp)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		return errors.Wrapf(err, errors.ErrLedgerWrite, "replacing ledger %s", m.path)
	}

	m.log.Debug().Str("path", m.path).Int("entries", len(m.owners)).Msg("ledger saved")
	return nil
}

// AddOwner records owner's claim on the destination path.
func (m *InstallationMap) AddOwner(dest, owner string) {
	dest = paths.Trim(dest)
	if dest == "" {
		return
	}
	set, ok := m.owners[dest]
	if !ok {
		set = make(map[string]struct{})
		m.owners[dest] = set
	}
	set[owner] = struct{}{}
}

// RemoveOwner drops owner's claim on the destination path. The path entry
// stays, possibly with an empty owner set, until reconciliation removes it.
func (m *InstallationMap) RemoveOwner(dest, owner string) {
	dest = paths.Trim(dest)
	if set, ok := m.owners[dest]; ok {
		delete(set, owner)
	}
}

// StripOwner drops owner's claim from every path it holds.
func (m *InstallationMap) StripOwner(owner string) {
	for _, set := range m.owners {
		delete(set, owner)
	}
}

// Owners returns the sorted owner names claiming the destination path.
func (m *InstallationMap) Owners(dest string) []string {
	set, ok := m.owners[paths.Trim(dest)]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the destination path appears in the ledger.
func (m *InstallationMap) Has(dest string) bool {
	_, ok := m.owners[paths.Trim(dest)]
	return ok
}

// Paths returns every tracked destination path, sorted.
func (m *InstallationMap) Paths() []string {
	out := make([]string, 0, len(m.owners))
	for dest := range m.owners {
		out = append(out, dest)
	}
	sort.Strings(out)
	return out
}

// Orphans returns the paths with no remaining owners, longest first so
// that reconciliation empties subdirectories before their parents.
func (m *InstallationMap) Orphans() []string {
	var out []string
	for dest, set := range m.owners {
		if len(set) == 0 {
			out = append(out, dest)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// Checksum returns the recorded checksum for the destination path.
func (m *InstallationMap) Checksum(dest string) (string, bool) {
	sum, ok := m.checksums[paths.Trim(dest)]
	return sum, ok
}

// SetChecksum records the checksum for the destination path.
func (m *InstallationMap) SetChecksum(dest, sum string) {
	dest = paths.Trim(dest)
	if dest == "" {
		return
	}
	m.checksums[dest] = sum
}

// ApplyUpdates merges a batch of destination→checksum updates.
func (m *InstallationMap) ApplyUpdates(updates map[string]string) {
	for dest, sum := range updates {
		m.SetChecksum(dest, sum)
	}
}

// Drop removes the destination path from both the owner map and the
// checksum map.
func (m *InstallationMap) Drop(dest string) {
	dest = paths.Trim(dest)
	delete(m.owners, dest)
	delete(m.checksums, dest)
}
