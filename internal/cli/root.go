package cli

// Package cli wires the pipeline into a terminal frontend. Every command
// loads settings, builds the services it needs, runs one operation and exits;
// nothing here holds state between invocations.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:           "treasure-chest",
	Short:         "Download and install Stardew Valley mods from Nexus Mods",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "settings file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit machine-readable JSON events")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI and exits non-zero on error.
func Execute(version string) {
	appVersion = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
