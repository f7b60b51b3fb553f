package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrmshandy/treasure-chest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with detected defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Default()
		if err := settings.Save(cfgPath); err != nil {
			return err
		}

		path := cfgPath
		if path == "" {
			path, _ = config.DefaultPath()
		}
		fmt.Printf("Settings written to %s\n", path)
		if settings.GamePath == "" {
			fmt.Println("Game path could not be detected, set gamePath manually")
		} else {
			fmt.Printf("Detected game path: %s\n", settings.GamePath)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		printJSON(settings)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			fmt.Println(cfgPath)
			return nil
		}
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
