package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) infoCmd() *cobra.Command {
	var showHost bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "List installed PHP versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showHost {
				if err := a.printHost(cmd); err != nil {
					return err
				}
			}

			mgr, err := a.newManager()
			if err != nil {
				return err
			}

			entries, err := mgr.Info(cmd.Context())
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(a.stdout, "No PHP versions installed")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(a.stdout, "%s %s %s\n", e.Version, e.Arch, e.ThreadSafety)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHost, "host", false, "Also show the detected host platform")

	return cmd
}

func (a *app) printHost(cmd *cobra.Command) error {
	info, err := a.detector.Detect(cmd.Context())
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}

	fmt.Fprintf(a.stdout, "OS:       %s\n", info.OS)
	if info.Platform != "" {
		fmt.Fprintf(a.stdout, "Platform: %s %s\n", info.Platform, info.PlatformVersion)
	}
	fmt.Fprintf(a.stdout, "Arch:     %s (%s)\n", info.Arch, info.ArchRaw)
	if !info.Supported() {
		fmt.Fprintln(a.stdout, "⚠ No PHP for Windows builds are published for this architecture")
	}
	fmt.Fprintln(a.stdout)
	return nil
}
