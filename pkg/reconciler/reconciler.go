// Package reconciler removes destination paths no longer claimed by any
// package after ownership changes, honoring the integrity policy's
// failure tolerance.
package reconciler

import (
	"github.com/arthur-debert/opus/pkg/errors"
	"github.com/arthur-debert/opus/pkg/ledger"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/paths"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/rs/zerolog"
)

// Reconciler cleans up zero-owner paths from disk and from the ledger.
type Reconciler struct {
	fs          types.FS
	ledger      *ledger.InstallationMap
	policy      types.IntegrityPolicy
	projectRoot string
	out         types.Output
	log         zerolog.Logger
}

// New creates a reconciler bound to the given ledger and project root.
func New(fsImpl types.FS, led *ledger.InstallationMap, policy types.IntegrityPolicy,
	projectRoot string, out types.Output) *Reconciler {
	return &Reconciler{
		fs:          fsImpl,
		ledger:      led,
		policy:      policy,
		projectRoot: paths.TrimTrailing(projectRoot),
		out:         out,
		log:         logging.GetLogger("reconciler"),
	}
}

// Clean removes every path whose owner set is empty. Orphans come back
// longest-first from the ledger, so emptied subdirectories are deleted
// before their parents. Non-empty directories are skipped: some other
// still-claimed path lives underneath.
func (r *Reconciler) Clean() error {
	for _, dest := range r.ledger.Orphans() {
		abs := r.projectRoot + "/" + dest

		info, err := r.fs.Stat(abs)
		if err != nil {
			// Already gone from disk; just forget it.
			r.ledger.Drop(dest)
			continue
		}

		if info.IsDir() {
			entries, err := r.fs.ReadDir(abs)
			if err != nil {
				if ferr := r.failure(dest, err); ferr != nil {
					return ferr
				}
				continue
			}
			if len(entries) > 0 {
				r.log.Debug().Str("dest", dest).Msg("directory not empty, skipping removal")
				r.ledger.Drop(dest)
				continue
			}
		}

		if err := r.fs.Remove(abs); err != nil {
			if ferr := r.failure(dest, err); ferr != nil {
				return ferr
			}
			continue
		}

		r.log.Info().Str("dest", dest).Msg("removed orphaned path")
		r.ledger.Drop(dest)
	}
	return nil
}

// failure applies the policy's cleanup tolerance: low ignores, medium
// warns and continues, high aborts the remaining reconciliation. Under
// low and medium the entry is forgotten so a zero-owner path never
// survives reconciliation.
func (r *Reconciler) failure(dest string, cause error) error {
	switch r.policy {
	case types.IntegrityHigh:
		return errors.Wrapf(cause, errors.ErrCleanup, "removing %s", dest)
	case types.IntegrityMedium:
		r.out.WriteLine("warning: could not remove " + dest + ": " + cause.Error())
		r.log.Warn().Err(cause).Str("dest", dest).Msg("cleanup failure tolerated")
	default:
		r.log.Debug().Err(cause).Str("dest", dest).Msg("cleanup failure ignored")
	}
	r.ledger.Drop(dest)
	return nil
}
