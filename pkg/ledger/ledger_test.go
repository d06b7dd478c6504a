package ledger

import (
	"encoding/json"
	"testing"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/filesystem"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*InstallationMap, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	m, err := Load(fs, "/project/opus.map")
	require.NoError(t, err)
	return m, fs
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	m, _ := newTestLedger(t)
	assert.Empty(t, m.Paths())
}

func TestLoad_CorruptFileIsFatal(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/project/opus.map", []byte("{not json"), 0644))

	_, err := Load(fs, "/project/opus.map")
	require.Error(t, err)
	assert.Equal(t, errors.ErrLedgerCorrupt, errors.GetCode(err))
}

func TestLoad_UnreadableFileIsFatal(t *testing.T) {
	// A ledger path that exists but cannot be read must not be mistaken
	// for an absent ledger: that would fabricate empty state.
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/project/opus.map", 0755))

	_, err := Load(fs, "/project/opus.map")
	require.Error(t, err)
	assert.Equal(t, errors.ErrLedgerCorrupt, errors.GetCode(err))
}

func TestLoad_BadEntryShapeIsFatal(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.WriteFile("/project/opus.map",
		[]byte(`{"public/js/widget.js": "not-a-list"}`), 0644))

	_, err := Load(fs, "/project/opus.map")
	require.Error(t, err)
	assert.Equal(t, errors.ErrLedgerCorrupt, errors.GetCode(err))
}

func TestRoundTrip(t *testing.T) {
	m, fs := newTestLedger(t)
	m.AddOwner("public/js/widget.js", "acme/widgets")
	m.AddOwner("public/js/widget.js", "acme/theme")
	m.AddOwner("public/js", "acme/widgets")
	m.SetChecksum("public/js/widget.js", "aabbcc")
	require.NoError(t, m.Save())

	loaded, err := Load(fs, "/project/opus.map")
	require.NoError(t, err)

	assert.Equal(t, m.Paths(), loaded.Paths())
	assert.Equal(t, []string{"acme/theme", "acme/widgets"}, loaded.Owners("public/js/widget.js"))
	sum, ok := loaded.Checksum("public/js/widget.js")
	require.True(t, ok)
	assert.Equal(t, "aabbcc", sum)
}

func TestSave_OwnerListsSorted(t *testing.T) {
	m, fs := newTestLedger(t)
	m.AddOwner("public/app.css", "zeta/pkg")
	m.AddOwner("public/app.css", "alpha/pkg")
	require.NoError(t, m.Save())

	content, err := fs.ReadFile("/project/opus.map")
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(content, &raw))
	var names []string
	require.NoError(t, json.Unmarshal(raw["public/app.css"], &names))
	assert.Equal(t, []string{"alpha/pkg", "zeta/pkg"}, names)
}

func TestSave_DeterministicAcrossRuns(t *testing.T) {
	m, fs := newTestLedger(t)
	m.AddOwner("a/b", "p1")
	m.AddOwner("a", "p1")
	m.SetChecksum("a/b", "0011")
	require.NoError(t, m.Save())
	first, err := fs.ReadFile("/project/opus.map")
	require.NoError(t, err)

	require.NoError(t, m.Save())
	second, err := fs.ReadFile("/project/opus.map")
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestAddOwner_NormalizesKeys(t *testing.T) {
	m, _ := newTestLedger(t)
	m.AddOwner("/public/js/", "p")
	assert.Equal(t, []string{"p"}, m.Owners("public/js"))
	assert.True(t, m.Has("public/js"))
}

func TestStripOwner(t *testing.T) {
	m, _ := newTestLedger(t)
	m.AddOwner("public/js/widget.js", "acme/widgets")
	m.AddOwner("public/js/widget.js", "acme/theme")
	m.AddOwner("public/css/app.css", "acme/widgets")

	m.StripOwner("acme/widgets")

	assert.Equal(t, []string{"acme/theme"}, m.Owners("public/js/widget.js"))
	assert.Empty(t, m.Owners("public/css/app.css"))
	// Zero-owner paths stay until reconciliation.
	assert.True(t, m.Has("public/css/app.css"))
}

func TestOrphans_DeepestFirst(t *testing.T) {
	m, _ := newTestLedger(t)
	m.AddOwner("public", "p")
	m.AddOwner("public/js", "p")
	m.AddOwner("public/js/widget.js", "p")
	m.AddOwner("public/css/app.css", "other")
	m.StripOwner("p")

	orphans := m.Orphans()
	assert.Equal(t, []string{"public/js/widget.js", "public/js", "public"}, orphans)
}

func TestDrop(t *testing.T) {
	m, _ := newTestLedger(t)
	m.AddOwner("public/js/widget.js", "p")
	m.SetChecksum("public/js/widget.js", "aa")

	m.Drop("public/js/widget.js")

	assert.False(t, m.Has("public/js/widget.js"))
	_, ok := m.Checksum("public/js/widget.js")
	assert.False(t, ok)
}

func TestApplyUpdates(t *testing.T) {
	m, _ := newTestLedger(t)
	m.ApplyUpdates(map[string]string{
		"public/js/widget.js": "11",
		"public/css/app.css":  "22",
	})

	sum, ok := m.Checksum("public/js/widget.js")
	require.True(t, ok)
	assert.Equal(t, "11", sum)
	sum, ok = m.Checksum("public/css/app.css")
	require.True(t, ok)
	assert.Equal(t, "22", sum)
}
