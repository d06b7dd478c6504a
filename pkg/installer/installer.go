// Package installer orchestrates the package lifecycle hooks: it builds
// each package's mapping, drives the copier, applies conflict resolution,
// reconciles ownership, and keeps the installation map durable.
package installer

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/opus/pkg/config"
	"github.com/arthur-debert/opus/pkg/copier"
	"github.com/arthur-debert/opus/pkg/ledger"
	"github.com/arthur-debert/opus/pkg/logging"
	"github.com/arthur-debert/opus/pkg/mapping"
	"github.com/arthur-debert/opus/pkg/reconciler"
	"github.com/arthur-debert/opus/pkg/resolver"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/rs/zerolog"
)

// EnvDisable is the process-wide kill switch: when set to any non-empty
// value, every hook becomes a no-op.
const EnvDisable = "OPUS_DISABLED"

// Disabled reports whether the environment kill switch is set.
func Disabled() bool {
	return os.Getenv(EnvDisable) != ""
}

// Session holds the state of one activation: configuration fixed for the
// process lifetime and the installation map held exclusively in memory
// between hooks. There are no ambient statics; every hook goes through
// the session.
type Session struct {
	fs          types.FS
	host        types.Host
	out         types.Output
	prompter    types.Prompter
	projectRoot string
	opts        config.Options
	ledger      *ledger.InstallationMap
	ledgerPath  string
	log         zerolog.Logger
	active      bool
}

// Activate starts a session: resolves the kill switch and enabled flag,
// and loads the ledger from disk. An inactive session accepts every hook
// and does nothing.
func Activate(fsImpl types.FS, h types.Host, out types.Output, p types.Prompter,
	projectRoot string, opts config.Options) (*Session, error) {
	s := &Session{
		fs:          fsImpl,
		host:        h,
		out:         out,
		prompter:    p,
		projectRoot: projectRoot,
		opts:        opts,
		ledgerPath:  filepath.Join(projectRoot, ledger.DefaultFileName),
		log:         logging.GetLogger("installer"),
	}

	if Disabled() {
		s.log.Info().Str("env", EnvDisable).Msg("disabled by environment, all hooks suppressed")
		return s, nil
	}
	if !opts.Enabled {
		s.log.Debug().Msg("not enabled for this project, all hooks suppressed")
		return s, nil
	}

	led, err := ledger.Load(s.fs, s.ledgerPath)
	if err != nil {
		return nil, err
	}
	s.ledger = led
	s.active = true
	return s, nil
}

// Deactivate ends the session. The ledger is already persisted after each
// successful operation; deactivation only releases the session.
func (s *Session) Deactivate() error {
	s.active = false
	return nil
}

// Ledger exposes the in-memory installation map for inspection. Nil on an
// inactive session.
func (s *Session) Ledger() *ledger.InstallationMap {
	return s.ledger
}

// PackageInstalled handles a fresh install of pkg.
func (s *Session) PackageInstalled(pkg types.Package) error {
	if !s.active {
		return nil
	}
	defer logging.LogOperationStart(s.log, "install "+pkg.Name)()

	if err := s.apply(pkg); err != nil {
		return s.abort(err)
	}
	return s.ledger.Save()
}

// PackageUpdated handles an update: the initial version's claims are
// stripped first, the target version is applied, then paths left without
// owners are reconciled away.
func (s *Session) PackageUpdated(initial, target types.Package) error {
	if !s.active {
		return nil
	}
	defer logging.LogOperationStart(s.log, "update "+target.Name)()

	if err := s.strip(initial); err != nil {
		return s.abort(err)
	}
	if err := s.apply(target); err != nil {
		return s.abort(err)
	}
	return s.reconcileAndSave()
}

// PackageUninstalled strips the package's claims and reconciles.
func (s *Session) PackageUninstalled(pkg types.Package) error {
	if !s.active {
		return nil
	}
	defer logging.LogOperationStart(s.log, "uninstall "+pkg.Name)()

	if err := s.strip(pkg); err != nil {
		return s.abort(err)
	}
	return s.reconcileAndSave()
}

// apply copies a package's resolved mapping and resolves any conflicts,
// merging all checksum updates into the ledger.
func (s *Session) apply(pkg types.Package) error {
	requires, err := s.host.Dependencies(pkg.Name)
	if err != nil {
		return err
	}
	m, err := mapping.Build(pkg, requires, s.opts.Framework, s.opts.ExternalMapping)
	if err != nil {
		return err
	}

	c := copier.New(s.fs, s.ledger, pkg, s.projectRoot)
	result := copier.NewResult()
	for _, owner := range m.Targets() {
		for _, source := range m.Sources(owner) {
			r, err := c.Copy(owner, source, m[owner][source])
			if err != nil {
				return err
			}
			result.Merge(r)
		}
	}
	s.ledger.ApplyUpdates(result.Updates)

	res := resolver.New(s.fs, s.ledger, s.opts.Integrity, s.projectRoot, s.out, s.prompter)
	updates, err := res.Resolve(result.Conflicts)
	// Conflicts resolved before a failure still carry their outcome;
	// whether the operation's mutations survive is the caller's call.
	s.ledger.ApplyUpdates(updates)
	return err
}

// strip removes every ownership claim the package's mapping establishes.
func (s *Session) strip(pkg types.Package) error {
	requires, err := s.host.Dependencies(pkg.Name)
	if err != nil {
		return err
	}
	m, err := mapping.Build(pkg, requires, s.opts.Framework, s.opts.ExternalMapping)
	if err != nil {
		return err
	}
	for _, owner := range m.Targets() {
		s.ledger.StripOwner(owner)
	}
	return nil
}

// reconcileAndSave cleans up zero-owner paths. A cleanup abort under high
// integrity still persists the removals that did succeed.
func (s *Session) reconcileAndSave() error {
	rec := reconciler.New(s.fs, s.ledger, s.opts.Integrity, s.projectRoot, s.out)
	cleanErr := rec.Clean()
	if err := s.ledger.Save(); err != nil {
		return err
	}
	return cleanErr
}

// abort discards the failed operation's in-memory mutations by reloading
// the ledger from its last durable state, so a fatal error in one package
// cannot corrupt the state already persisted for others.
func (s *Session) abort(cause error) error {
	led, err := ledger.Load(s.fs, s.ledgerPath)
	if err != nil {
		s.log.Error().Err(err).Msg("could not reload ledger after failed operation")
		return cause
	}
	s.ledger = led
	return cause
}
