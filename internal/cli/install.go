package cli

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hrmshandy/treasure-chest/internal/archive"
	"github.com/hrmshandy/treasure-chest/internal/config"
	"github.com/hrmshandy/treasure-chest/internal/installer"
	"github.com/hrmshandy/treasure-chest/internal/model"
)

var installNameHint string

var installCmd = &cobra.Command{
	Use:   "install <archive>",
	Short: "Install a mod from a local archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		record, err := installArchive(settings, args[0], installNameHint, nil, false)
		if err != nil {
			return err
		}
		reportInstalled(record)
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installNameHint, "name", "", "override the install folder name")
}

// installArchive builds an install orchestrator from settings and runs one
// install.
func installArchive(settings *config.Settings, archivePath, nameHint string, prov *installer.Provenance, deleteAfter bool) (*model.InstallRecord, error) {
	modsDir := settings.ModsDir()
	if modsDir == "" {
		return nil, errors.New("game path not configured, run 'treasure-chest config init' first")
	}

	appDir, err := config.AppDir()
	if err != nil {
		return nil, err
	}

	svc := installer.NewService(
		filepath.Join(appDir, "scratch"),
		filepath.Join(appDir, "backups"),
		archive.NewService(),
	)

	policy := installer.Policy{
		AutoInstall:               settings.AutoInstall,
		DeleteArchiveAfterInstall: deleteAfter,
		FrameworkNames:            settings.CoreFrameworks,
		DisplayNameHint:           nameHint,
	}

	return svc.InstallFromArchive(archivePath, modsDir, policy, prov)
}
