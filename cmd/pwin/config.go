package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure pwin",
		Long:  `View or change the install base path and thread safety mode stored in ~/.pwin.lua.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigView(cmd)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Show the current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runConfigView(cmd)
			},
		},
		&cobra.Command{
			Use:   "set-path [path]",
			Short: "Set the base directory for all PHP installations",
			Long: `Set the base directory for all PHP installations. Each version is extracted
into a subdirectory named after it. Without a path the default (C:\) is restored.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				return a.updateConfig(cmd, func(cfg *config.Config) error {
					cfg.Path = path
					return nil
				})
			},
		},
		&cobra.Command{
			Use:       "set-thread-safety <ts|nts>",
			Short:     "Select the thread safety mode for new installs",
			Long:      `Select "ts" (used with the Apache web server) or "nts" (used with IIS or the CLI).`,
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"ts", "nts"},
			RunE: func(cmd *cobra.Command, args []string) error {
				ts, err := config.ParseThreadSafety(args[0])
				if err != nil {
					return err
				}
				return a.updateConfig(cmd, func(cfg *config.Config) error {
					cfg.ThreadSafety = ts
					return nil
				})
			},
		},
	)

	return cmd
}

func (a *app) runConfigView(cmd *cobra.Command) error {
	home, err := getHomeDir()
	if err != nil {
		return err
	}
	store := a.configStore(home)

	cfg, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Fprintf(a.stdout, "Config file: %s\n", store.Path())
	fmt.Fprintf(a.stdout, "Install path: %s\n", cfg.InstallPath())
	fmt.Fprintf(a.stdout, "Thread safety mode: %s\n", cfg.ThreadSafetyMode().Describe())
	return nil
}

// updateConfig loads the config, applies fn and saves the result.
func (a *app) updateConfig(cmd *cobra.Command, fn func(*config.Config) error) error {
	home, err := getHomeDir()
	if err != nil {
		return err
	}
	store := a.configStore(home)

	cfg, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := store.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintln(a.stdout, "Configuration saved!")
	return nil
}
