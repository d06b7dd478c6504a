// Package resolver decides what happens to each copy conflict: overwrite
// with the incoming content, keep the file on disk, or ask the user,
// depending on the configured integrity policy and the three-way checksum
// comparison against the installation map.
package resolver

import (
	"sort"
	"strings"

	"github.com/arthur-debert/opus/pkg/checksum"
	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/ledger"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/paths"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/rs/zerolog"
)

// Resolver applies the integrity policy to a batch of conflicts.
type Resolver struct {
	fs          types.FS
	ledger      *ledger.InstallationMap
	policy      types.IntegrityPolicy
	projectRoot string
	out         types.Output
	prompter    types.Prompter
	log         zerolog.Logger
}

// New creates a resolver for one package operation.
func New(fsImpl types.FS, led *ledger.InstallationMap, policy types.IntegrityPolicy,
	projectRoot string, out types.Output, prompter types.Prompter) *Resolver {
	return &Resolver{
		fs:          fsImpl,
		ledger:      led,
		policy:      policy,
		projectRoot: paths.TrimTrailing(projectRoot),
		out:         out,
		prompter:    prompter,
		log:         logging.GetLogger("resolver"),
	}
}

// Resolve processes every conflict and returns the checksum updates the
// caller must merge into the ledger. Callers may not ignore the returned
// updates; a dropped result would desynchronize the ledger from disk.
func (r *Resolver) Resolve(conflicts map[string]string) (map[string]string, error) {
	updates := make(map[string]string)

	// Sorted by destination for a deterministic prompt order.
	sources := make([]string, 0, len(conflicts))
	for source := range conflicts {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool {
		if conflicts[sources[i]] != conflicts[sources[j]] {
			return conflicts[sources[i]] < conflicts[sources[j]]
		}
		return sources[i] < sources[j]
	})

	for _, source := range sources {
		dest := conflicts[source]
		if err := r.resolveOne(source, dest, updates); err != nil {
			return updates, err
		}
	}
	return updates, nil
}

// resolveOne applies the policy to a single conflict. Three checksums
// matter: the incoming source content, the bytes currently on disk, and
// the value recorded in the ledger by the previous run (checksum-of-empty
// when absent).
func (r *Resolver) resolveOne(source, dest string, updates map[string]string) error {
	newSum := checksum.FileTolerant(r.fs, source)
	currentSum := checksum.FileTolerant(r.fs, r.abs(dest))
	oldSum, ok := r.ledger.Checksum(dest)
	if !ok {
		oldSum = checksum.Empty
	}

	r.log.Debug().
		Str("dest", dest).
		Str("new", newSum).
		Str("old", oldSum).
		Str("current", currentSum).
		Str("policy", string(r.policy)).
		Msg("resolving conflict")

	switch r.policy {
	case types.IntegrityLow:
		return r.overwrite(source, dest, newSum, updates)

	case types.IntegrityMedium:
		if newSum == oldSum {
			// Incoming content unchanged since the last run: the
			// steady state, nothing to do.
			return nil
		}
		if oldSum == currentSum {
			// The package changed but the file on disk was never
			// hand-edited; taking the new version is safe.
			return r.overwrite(source, dest, newSum, updates)
		}
		return r.prompt(source, dest, newSum, updates)

	case types.IntegrityHigh:
		return r.prompt(source, dest, newSum, updates)
	}

	return errors.Newf(errors.ErrInternal, "unknown integrity policy %q", r.policy)
}

func (r *Resolver) overwrite(source, dest, newSum string, updates map[string]string) error {
	content, err := r.fs.ReadFile(source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceNotFound, "reading %s", source)
	}
	if err := r.fs.WriteFile(r.abs(dest), content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "writing %s", dest)
	}
	updates[dest] = newSum
	r.log.Info().Str("dest", dest).Msg("conflict resolved: overwritten")
	return nil
}

// prompt runs the interactive protocol: overwrite (default), keep, diff.
// Keep leaves the file alone but records the incoming checksum, blessing
// the kept customization as the new baseline so the next unchanged run
// raises no further conflict.
func (r *Resolver) prompt(source, dest, newSum string, updates map[string]string) error {
	for {
		answer, err := r.prompter.Ask("Overwrite " + dest + "? [O]verwrite/[k]eep/[d]iff: ")
		if err != nil {
			return errors.Wrapf(err, errors.ErrPromptUnavailable,
				"conflict on %s requires interactive resolution", dest)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "o", "overwrite":
			return r.overwrite(source, dest, newSum, updates)

		case "k", "keep":
			updates[dest] = newSum
			r.log.Info().Str("dest", dest).Msg("conflict resolved: kept")
			return nil

		case "d", "diff":
			diff, err := r.renderDiff(source, dest)
			if err != nil {
				r.out.WriteLine("diff unavailable: " + err.Error())
				continue
			}
			r.out.WriteLine(diff)

		default:
			r.out.WriteLine("unrecognized answer, expected overwrite, keep or diff")
		}
	}
}

func (r *Resolver) abs(dest string) string {
	return r.projectRoot + "/" + paths.Trim(dest)
}
