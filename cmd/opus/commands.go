package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install [package...]",
		Short: "Copy mapped files of installed packages into the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver()
			if err != nil {
				return err
			}
			defer d.close()

			pkgs, err := d.resolvePackages(args)
			if err != nil {
				return err
			}
			for _, pkg := range pkgs {
				if err := d.session.PackageInstalled(pkg); err != nil {
					return err
				}
				pterm.Success.Printfln("installed %s", pkg.Name)
			}
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [package...]",
		Short: "Re-sync mapped files, dropping mappings the packages no longer declare",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver()
			if err != nil {
				return err
			}
			defer d.close()

			pkgs, err := d.resolvePackages(args)
			if err != nil {
				return err
			}
			for _, pkg := range pkgs {
				// The CLI sees only the current package contents, so the
				// installed state doubles as the update's initial version.
				if err := d.session.PackageUpdated(pkg, pkg); err != nil {
					return err
				}
				pterm.Success.Printfln("updated %s", pkg.Name)
			}
			return nil
		},
	}
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <package>...",
		Short: "Remove a package's claims and clean up unowned files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver()
			if err != nil {
				return err
			}
			defer d.close()

			pkgs, err := d.resolvePackages(args)
			if err != nil {
				return err
			}
			for _, pkg := range pkgs {
				if err := d.session.PackageUninstalled(pkg); err != nil {
					return err
				}
				pterm.Success.Printfln("uninstalled %s", pkg.Name)
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the tracked destination paths and their owners",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDriver()
			if err != nil {
				return err
			}
			defer d.close()

			led := d.session.Ledger()
			if led == nil {
				pterm.Info.Println("opus is disabled for this project")
				return nil
			}
			paths := led.Paths()
			if len(paths) == 0 {
				pterm.Info.Println("no tracked paths")
				return nil
			}

			data := pterm.TableData{{"Path", "Owners", "Checksum"}}
			for _, path := range paths {
				sum, _ := led.Checksum(path)
				data = append(data, []string{
					path,
					joinOwners(led.Owners(path)),
					shorten(sum),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func joinOwners(owners []string) string {
	out := ""
	for i, owner := range owners {
		if i > 0 {
			out += ", "
		}
		out += owner
	}
	return out
}

func shorten(sum string) string {
	if len(sum) > 8 {
		return sum[:8]
	}
	return sum
}
