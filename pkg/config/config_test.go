package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	opts, err := Load(t.TempDir(), "acme/app", nil)
	require.NoError(t, err)

	assert.True(t, opts.Enabled)
	assert.Equal(t, "acme/app", opts.Framework)
	assert.False(t, opts.ExternalMapping)
	assert.Equal(t, types.IntegrityMedium, opts.Integrity)
}

func TestLoad_DeclaredOverridesDefaults(t *testing.T) {
	declared := map[string]interface{}{
		"enabled": true,
		"options": map[string]interface{}{
			"framework":        "custom/identity",
			"external-mapping": true,
			"integrity":        "high",
		},
	}

	opts, err := Load(t.TempDir(), "acme/app", declared)
	require.NoError(t, err)

	assert.Equal(t, "custom/identity", opts.Framework)
	assert.True(t, opts.ExternalMapping)
	assert.Equal(t, types.IntegrityHigh, opts.Integrity)
}

func TestLoad_DisabledProject(t *testing.T) {
	declared := map[string]interface{}{"enabled": false}

	opts, err := Load(t.TempDir(), "acme/app", declared)
	require.NoError(t, err)
	assert.False(t, opts.Enabled)
}

func TestLoad_TomlOverrideFile(t *testing.T) {
	root := t.TempDir()
	override := "[options]\nintegrity = \"low\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".opus.toml"), []byte(override), 0644))

	declared := map[string]interface{}{
		"options": map[string]interface{}{"integrity": "high"},
	}

	opts, err := Load(root, "acme/app", declared)
	require.NoError(t, err)
	assert.Equal(t, types.IntegrityLow, opts.Integrity,
		"local override file wins over declared configuration")
}

func TestLoad_YamlOverrideFile(t *testing.T) {
	root := t.TempDir()
	override := "options:\n  framework: yaml/identity\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".opus.yaml"), []byte(override), 0644))

	opts, err := Load(root, "acme/app", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml/identity", opts.Framework)
}

func TestLoad_TomlWinsOverYaml(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".opus.toml"),
		[]byte("[options]\nframework = \"toml/identity\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".opus.yaml"),
		[]byte("options:\n  framework: yaml/identity\n"), 0644))

	opts, err := Load(root, "acme/app", nil)
	require.NoError(t, err)
	assert.Equal(t, "toml/identity", opts.Framework)
}

func TestLoad_InvalidIntegrity(t *testing.T) {
	declared := map[string]interface{}{
		"options": map[string]interface{}{"integrity": "paranoid"},
	}

	_, err := Load(t.TempDir(), "acme/app", declared)
	require.Error(t, err)
	assert.Equal(t, errors.ErrConfigInvalid, errors.GetCode(err))
}

func TestLoad_EmptyFrameworkFallsBackToProjectName(t *testing.T) {
	declared := map[string]interface{}{
		"options": map[string]interface{}{"framework": ""},
	}

	opts, err := Load(t.TempDir(), "acme/app", declared)
	require.NoError(t, err)
	assert.Equal(t, "acme/app", opts.Framework)
}
