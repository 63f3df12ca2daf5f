package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/pwin/internal/service"
	"github.com/ZebulonRouseFrantzich/pwin/internal/version"
)

func (a *app) updateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update [version]",
		Short: "Update installed PHP versions to their newest patch",
		Long: `Update every installed PHP version, or only the given release line, to the
newest published patch. Each upgrade keeps the thread safety mode it was
installed with.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.UpdateRequest{DryRun: dryRun}
			if len(args) == 1 {
				v, err := parseVersionArg(args[0])
				if err != nil {
					return err
				}
				req.Version = &v
			}

			mgr, err := a.newManager()
			if err != nil {
				return err
			}

			result, err := mgr.Update(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("update: %w", err)
			}

			a.printUpdate(result)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the planned upgrades without performing them")

	return cmd
}

func (a *app) printUpdate(result *service.UpdateResult) {
	if len(result.Plans) == 0 {
		fmt.Fprintln(a.stdout, "No PHP versions installed")
		return
	}

	if result.DryRun {
		fmt.Fprintln(a.stdout, "Update plan (dry-run mode)")
		fmt.Fprintln(a.stdout, "━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}

	for _, p := range result.Plans {
		switch p.Action {
		case service.ActionUpgrade:
			target := upgradeTarget(p)
			if result.DryRun {
				fmt.Fprintf(a.stdout, "  %s → %s (%s)\n", p.Installed, target, p.Variant)
			} else {
				fmt.Fprintf(a.stdout, "✓ Upgraded %s → %s\n", p.Installed, target)
			}
		case service.ActionUnavailable:
			fmt.Fprintf(a.stdout, "  %s: %s\n", p.Installed, p.Reason)
		default:
			fmt.Fprintf(a.stdout, "  %s is up to date\n", p.Installed)
		}
	}

	n := result.Upgrades()
	switch {
	case n == 0:
		fmt.Fprintln(a.stdout, "Everything is up to date")
	case result.DryRun:
		fmt.Fprintf(a.stdout, "%d upgrade(s) available, nothing changed\n", n)
	}
}

func upgradeTarget(p service.UpdatePlan) version.Version {
	if p.Install != nil {
		return p.Install.Entry.Version
	}
	return p.Available
}
