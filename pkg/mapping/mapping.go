// Package mapping resolves a package's declared configuration into the
// flat table of owner → {source: destination} pairs applicable to the
// active framework identity.
package mapping

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/types"
)

// PackageMap is the resolved, per-operation mapping table: owning package
// identity → relative source path → relative destination path. Built fresh
// for every install/update and never persisted.
type PackageMap map[string]map[string]string

// Targets returns the owner identities in the map, sorted for
// deterministic iteration.
func (m PackageMap) Targets() []string {
	out := make([]string, 0, len(m))
	for target := range m {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Sources returns the source paths mapped for an owner, sorted.
func (m PackageMap) Sources(target string) []string {
	out := make([]string, 0, len(m[target]))
	for source := range m[target] {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

func (m PackageMap) add(target, source, dest string) {
	entry, ok := m[target]
	if !ok {
		entry = make(map[string]string)
		m[target] = entry
	}
	entry[source] = dest
}

// Build resolves pkg's declared configuration against the active framework
// identity. A package that declares nothing for the framework contributes
// an empty map; that is not an error.
//
// Entries whose value is a plain destination string fold into a mapping
// owned by the package itself. Entries whose value is itself a mapping are
// external/integration declarations: the key names a target package,
// possibly with a `*` wildcard matched against every required dependency.
// External targets require externalAllowed.
func Build(pkg types.Package, requires []types.DependencyLink, framework string, externalAllowed bool) (PackageMap, error) {
	log := logging.GetLogger("mapping")
	result := make(PackageMap)

	declared, ok := pkg.Declared[framework]
	if !ok {
		log.Debug().
			Str("package", pkg.Name).
			Str("framework", framework).
			Msg("no declared mappings for framework")
		return result, nil
	}

	section, ok := declared.(map[string]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrConfigInvalid,
			"invalid element of unexpected type in %s mappings of %s", framework, pkg.Name)
	}

	// Sorted iteration keeps wildcard expansion deterministic.
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := section[key].(type) {
		case string:
			result.add(pkg.Name, key, value)

		case map[string]interface{}:
			if key != pkg.Name && !externalAllowed {
				return nil, errors.Newf(errors.ErrExternalMapping,
					"external mapping disabled for %s", key)
			}
			pairs, err := stringPairs(pkg.Name, key, value)
			if err != nil {
				return nil, err
			}
			for _, target := range expandTargets(key, requires) {
				for source, dest := range pairs {
					result.add(target, source, dest)
				}
			}

		default:
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"invalid element of unexpected type for %q in %s", key, pkg.Name)
		}
	}

	return result, nil
}

// expandTargets resolves a target key against the declared requirements.
// Wildcard keys match every requirement target; the literal key is always
// included as well so exact external targets apply even when they are not
// among the requirements.
func expandTargets(key string, requires []types.DependencyLink) []string {
	targets := []string{key}
	if !strings.Contains(key, "*") {
		return targets
	}

	pattern := wildcardPattern(key)
	seen := map[string]struct{}{key: {}}
	for _, link := range requires {
		if _, dup := seen[link.Target]; dup {
			continue
		}
		if pattern.MatchString(link.Target) {
			targets = append(targets, link.Target)
			seen[link.Target] = struct{}{}
		}
	}
	sort.Strings(targets)
	return targets
}

// wildcardPattern converts a `*` wildcard key to an anchored regular
// expression, escaping every literal segment.
func wildcardPattern(key string) *regexp.Regexp {
	segments := strings.Split(key, "*")
	for i, segment := range segments {
		segments[i] = regexp.QuoteMeta(segment)
	}
	return regexp.MustCompile("^" + strings.Join(segments, "(.*)") + "$")
}

func stringPairs(pkgName, key string, value map[string]interface{}) (map[string]string, error) {
	pairs := make(map[string]string, len(value))
	for source, rawDest := range value {
		dest, ok := rawDest.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigInvalid,
				"invalid element of unexpected type for %q under %q in %s", source, key, pkgName)
		}
		pairs[source] = dest
	}
	return pairs, nil
}
