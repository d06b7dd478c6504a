package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// setupProject lays out a minimal project with one vendored package that
// maps a single asset into public/js/.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeProjectFile(t, root, "opus.json", `{"name": "acme/app"}`)
	writeProjectFile(t, root, "vendor/acme/widgets/opus.json", `{
		"name": "acme/widgets",
		"opus": {"acme/app": {"assets/widget.js": "public/js/"}}
	}`)
	writeProjectFile(t, root, "vendor/acme/widgets/assets/widget.js", "var w = 1;\n")
	return root
}

func TestInstallCmd(t *testing.T) {
	root := setupProject(t)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"install", "--project", root, "acme/widgets"})
	require.NoError(t, rootCmd.Execute())

	copied, err := os.ReadFile(filepath.Join(root, "public", "js", "widget.js"))
	require.NoError(t, err)
	assert.Equal(t, "var w = 1;\n", string(copied))

	_, err = os.Stat(filepath.Join(root, "opus.map"))
	assert.NoError(t, err, "ledger written after install")
}

func TestInstallCmd_UnknownPackage(t *testing.T) {
	root := setupProject(t)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"install", "--project", root, "acme/missing"})
	assert.Error(t, rootCmd.Execute())
}

func TestUninstallCmd(t *testing.T) {
	root := setupProject(t)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"install", "--project", root, "acme/widgets"})
	require.NoError(t, rootCmd.Execute())

	rootCmd = NewRootCmd()
	rootCmd.SetArgs([]string{"uninstall", "--project", root, "acme/widgets"})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(filepath.Join(root, "public", "js", "widget.js"))
	assert.True(t, os.IsNotExist(err), "copied file removed on uninstall")
}

func TestStatusCmd(t *testing.T) {
	root := setupProject(t)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"install", "--project", root, "acme/widgets"})
	require.NoError(t, rootCmd.Execute())

	rootCmd = NewRootCmd()
	rootCmd.SetArgs([]string{"status", "--project", root})
	assert.NoError(t, rootCmd.Execute())
}

func TestVersionCmd(t *testing.T) {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"version"})
	assert.NoError(t, rootCmd.Execute())
}
