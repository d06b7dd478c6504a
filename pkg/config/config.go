// Package config resolves the installer's activation options: the active
// framework identity, the integrity policy, the external-mapping gate and
// the enabled flag.
//
// Options layer in order of increasing precedence: built-in defaults, the
// project's declared opus configuration (from the root package manifest),
// then an optional .opus.toml or .opus.yaml file at the project root for
// local overrides.
package config

import (
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/types"
)

// Options is the resolved, process-wide installer configuration, fixed
// at activation.
type Options struct {
	// Enabled gates all installer activity for this project.
	Enabled bool

	// Framework is the active identity mappings are selected by. Defaults
	// to the project's own name.
	Framework string

	// ExternalMapping allows packages to declare mappings on behalf of
	// other packages.
	ExternalMapping bool

	// Integrity is the conflict and cleanup strictness.
	Integrity types.IntegrityPolicy
}

// Load resolves the activation options for a project. declared is the raw
// opus entry of the project's own manifest (nil when absent); projectName
// seeds the default framework identity.
func Load(projectRoot, projectName string, declared map[string]interface{}) (Options, error) {
	log := logging.GetLogger("config")
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"enabled":                  true,
		"options.framework":        projectName,
		"options.external-mapping": false,
		"options.integrity":        string(types.IntegrityMedium),
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Options{}, errors.Wrap(err, errors.ErrConfigInvalid, "loading default options")
	}

	if declared != nil {
		if err := k.Load(confmap.Provider(declared, "."), nil); err != nil {
			return Options{}, errors.Wrap(err, errors.ErrConfigInvalid, "loading declared options")
		}
	}

	// Local override files, first match wins.
	overrides := []struct {
		name   string
		parser koanf.Parser
	}{
		{".opus.toml", toml.Parser()},
		{"opus.toml", toml.Parser()},
		{".opus.yaml", yaml.Parser()},
		{"opus.yaml", yaml.Parser()},
	}
	for _, o := range overrides {
		path := filepath.Join(projectRoot, o.name)
		if err := k.Load(file.Provider(path), o.parser); err == nil {
			log.Debug().Str("path", path).Msg("loaded local override file")
			break
		}
	}

	integrity, err := types.ParseIntegrity(k.String("options.integrity"))
	if err != nil {
		return Options{}, errors.Wrap(err, errors.ErrConfigInvalid, "invalid options.integrity")
	}

	framework := k.String("options.framework")
	if framework == "" {
		framework = projectName
	}

	opts := Options{
		Enabled:         k.Bool("enabled"),
		Framework:       framework,
		ExternalMapping: k.Bool("options.external-mapping"),
		Integrity:       integrity,
	}

	log.Debug().
		Bool("enabled", opts.Enabled).
		Str("framework", opts.Framework).
		Bool("externalMapping", opts.ExternalMapping).
		Str("integrity", string(opts.Integrity)).
		Msg("options resolved")
	return opts, nil
}
