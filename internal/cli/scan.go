package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hrmshandy/treasure-chest/internal/config"
	"github.com/hrmshandy/treasure-chest/internal/installer"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List mods installed in the game's Mods directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		modsDir := settings.ModsDir()
		if modsDir == "" {
			return errors.New("game path not configured, run 'treasure-chest config init' first")
		}

		mods, err := installer.ScanMods(modsDir)
		if err != nil {
			return err
		}

		if jsonOut {
			printJSON(mods)
			return nil
		}

		if len(mods) == 0 {
			fmt.Println("No mods installed")
			return nil
		}

		for _, mod := range mods {
			state := color.GreenString("enabled")
			if !mod.IsEnabled {
				state = color.RedString("disabled")
			}
			fmt.Printf("%-40s %-12s %s  %s\n", mod.Name, mod.Version, state, mod.Path)
		}
		fmt.Printf("\n%d mod(s) found\n", len(mods))
		return nil
	},
}
