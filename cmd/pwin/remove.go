package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/pwin/internal/service"
)

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <version>",
		Short: "Remove a version of PHP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersionArg(args[0])
			if err != nil {
				return err
			}

			mgr, err := a.newManager()
			if err != nil {
				return err
			}

			result, err := mgr.Remove(cmd.Context(), v)
			if err != nil {
				return fmt.Errorf("remove %s: %w", v, err)
			}

			if result.Status == service.StatusNotInstalled {
				fmt.Fprintf(a.stdout, "Version %s not installed\n", v)
				return nil
			}
			fmt.Fprintf(a.stdout, "✓ Removed PHP %s from %s\n", result.Entry, result.Dir)
			return nil
		},
	}
}
