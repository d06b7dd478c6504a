package main

import (
	"path/filepath"

	"github.com/arthur-debert/opus/pkg/config"
	"github.com/arthur-debert/opus/pkg/filesystem"
	"github.com/arthur-debert/opus/pkg/host"
	"github.com/arthur-debert/opus/pkg/installer"
	"github.com/arthur-debert/opus/pkg/types"
	"github.com/arthur-debert/opus/pkg/ui"
)

// driver wires a session over the project at projectRoot, acting as the
// host integration layer for standalone CLI runs.
type driver struct {
	fs      types.FS
	host    *host.DirectoryHost
	session *installer.Session
	root    string
}

func newDriver() (*driver, error) {
	fs := filesystem.NewOS()

	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}

	project, err := host.LoadProject(fs, root)
	if err != nil {
		return nil, err
	}
	opts, err := config.Load(root, project.Name, project.Declared)
	if err != nil {
		return nil, err
	}

	h, err := host.NewDirectoryHost(fs, filepath.Join(root, "vendor"))
	if err != nil {
		return nil, err
	}

	var prompter types.Prompter = ui.NewConsolePrompter()
	if autoYes {
		prompter = ui.AutoApprove{}
	}

	session, err := installer.Activate(fs, h, ui.NewConsoleOutput(nil), prompter, root, opts)
	if err != nil {
		return nil, err
	}

	return &driver{fs: fs, host: h, session: session, root: root}, nil
}

func (d *driver) close() {
	_ = d.session.Deactivate()
}

// resolvePackages turns command arguments into packages, defaulting to
// every installed package when no names are given.
func (d *driver) resolvePackages(args []string) ([]types.Package, error) {
	if len(args) == 0 {
		return d.host.Packages()
	}
	out := make([]types.Package, 0, len(args))
	for _, name := range args {
		pkg, err := d.host.Package(name)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}
