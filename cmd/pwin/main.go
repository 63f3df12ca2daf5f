package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/pwin/internal/config"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, newApp(stdout, stderr), args)
}

func execute(ctx context.Context, a *app, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", config.FormatError(err, a.verbose))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pwin",
		Short: "Manage PHP for Windows installations",
		Long: `pwin installs, removes and updates PHP for Windows releases published on
windows.php.net and keeps track of them in ~/.pwin.lock.

The install base and thread safety mode are read from ~/.pwin.lua.
Set PWIN_HOME to keep both files somewhere else.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		a.installCmd(),
		a.removeCmd(),
		a.updateCmd(),
		a.infoCmd(),
		a.configCmd(),
		versionCmd(),
	)

	return rootCmd
}
