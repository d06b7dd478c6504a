// Package types defines the shared data model and collaborator interfaces
// for the opus installer core.
package types

import "fmt"

// IntegrityPolicy governs conflict resolution and cleanup failure tolerance.
type IntegrityPolicy string

const (
	// IntegrityLow always takes the incoming version and ignores cleanup failures.
	IntegrityLow IntegrityPolicy = "low"

	// IntegrityMedium prompts only when both the package content and the
	// file on disk changed since the last run; cleanup failures warn.
	IntegrityMedium IntegrityPolicy = "medium"

	// IntegrityHigh prompts on every conflict; cleanup failures are fatal.
	IntegrityHigh IntegrityPolicy = "high"
)

// ParseIntegrity validates and converts a configured integrity value.
func ParseIntegrity(s string) (IntegrityPolicy, error) {
	switch IntegrityPolicy(s) {
	case IntegrityLow, IntegrityMedium, IntegrityHigh:
		return IntegrityPolicy(s), nil
	}
	return "", fmt.Errorf("invalid integrity policy %q (want low, medium or high)", s)
}

// Package is an installed package as seen through the host package manager:
// its identity, where its files live on disk, and the raw declared
// configuration found under the reserved opus namespace in its manifest.
type Package struct {
	// Name is the package's canonical identity, e.g. "acme/widgets".
	Name string

	// InstallRoot is the absolute path the package is installed under.
	InstallRoot string

	// Declared is the raw value of the package manifest's opus entry:
	// a framework-keyed map of mapping declarations. Nil when the package
	// declares nothing.
	Declared map[string]interface{}
}

// DependencyLink is one declared requirement edge of a package.
type DependencyLink struct {
	// Source is the requiring package's name.
	Source string

	// Target is the required package's name, matched against wildcard
	// mapping keys.
	Target string
}

// Host is what the core requires from the package manager integration layer.
type Host interface {
	// Packages enumerates all currently-resolved installed packages.
	Packages() ([]Package, error)

	// Package looks up a single installed package by name.
	Package(name string) (Package, error)

	// Dependencies returns the declared requirement links of the named package.
	Dependencies(name string) ([]DependencyLink, error)
}

// Output is a line-oriented sink for user-facing messages.
type Output interface {
	WriteLine(s string)
}

// Prompter asks the user free-form questions during conflict resolution.
type Prompter interface {
	// Ask presents a question and returns the user's trimmed answer.
	// An empty answer means the question's default applies.
	Ask(question string) (string, error)
}
