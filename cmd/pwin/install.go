package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/pwin/internal/service"
)

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>",
		Short: "Install a version of PHP",
		Long: `Install the newest patch of a PHP release line, e.g. "8.1" or "8.1.17".

The build is chosen from the configured thread safety mode and the
architecture pwin runs on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersionArg(args[0])
			if err != nil {
				return err
			}

			mgr, err := a.newManager()
			if err != nil {
				return err
			}

			result, err := mgr.Install(cmd.Context(), v)
			if err != nil {
				return fmt.Errorf("install %s: %w", v, err)
			}

			switch result.Status {
			case service.StatusAlreadyInstalled:
				fmt.Fprintf(a.stdout, "Version %s already installed\n", result.Entry.Version)
			case service.StatusNoMatchingBuild:
				fmt.Fprintf(a.stdout, "No matching release for thread safety `%s` and arch `%s`\n",
					result.Entry.ThreadSafety, result.Entry.Arch)
			default:
				fmt.Fprintf(a.stdout, "✓ Installed PHP %s (%s) to %s\n", result.Entry, result.Variant, result.Dir)
			}
			return nil
		},
	}
}
