package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hrmshandy/treasure-chest/internal/config"
	"github.com/hrmshandy/treasure-chest/internal/download"
	"github.com/hrmshandy/treasure-chest/internal/events"
	"github.com/hrmshandy/treasure-chest/internal/installer"
	"github.com/hrmshandy/treasure-chest/internal/model"
	"github.com/hrmshandy/treasure-chest/internal/nexus"
	"github.com/hrmshandy/treasure-chest/internal/nxm"
)

var downloadCmd = &cobra.Command{
	Use:   "download <nxm-url>",
	Short: "Download a mod from an nxm:// link and install it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	req, err := nxm.Parse(args[0])
	if err != nil {
		return err
	}

	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	client := nexus.NewClient(nexus.Config{APIKey: settings.NexusAPIKey})
	svc := download.NewService(settings.DownloadDir, settings.MaxConcurrentDownloads, client)
	if modsDir := settings.ModsDir(); modsDir != "" {
		svc.SetInstalledMods(func() ([]model.Mod, error) {
			return installer.ScanMods(modsDir)
		})
	}

	hub := events.NewHub()
	svc.SetEmitter(hub)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	task, err := svc.Submit(*req)
	if err != nil {
		return err
	}

	if !jsonOut {
		fmt.Printf("Queued %s\n", task.FileName)
	}

	var bar *pb.ProgressBar
	defer func() {
		if bar != nil {
			bar.Finish()
		}
	}()

	for {
		select {
		case <-cmd.Context().Done():
			_ = svc.Cancel(task.ID)
			return cmd.Context().Err()

		case e := <-ch:
			if e.TaskID != task.ID {
				continue
			}
			if jsonOut {
				printJSON(e)
			}

			switch e.Type {
			case events.TypeProgress:
				if !jsonOut {
					bar = updateBar(bar, e.Progress)
				}

			case events.TypeFailed:
				return errors.New(failureReason(svc, task.ID, e.Message))

			case events.TypeCompleted:
				if bar != nil {
					bar.Finish()
					bar = nil
				}
				done, _ := svc.Task(task.ID)
				if !jsonOut {
					color.Green("✓ Downloaded %s", done.FilePath)
				}
				if !settings.AutoInstall {
					return nil
				}
				if settings.ConfirmBeforeInstall && !jsonOut && !confirm(fmt.Sprintf("Install %s now?", done.FileName)) {
					return nil
				}
				return installDownloaded(settings, done)
			}
		}
	}
}

func installDownloaded(settings *config.Settings, task *model.DownloadTask) error {
	prov := &installer.Provenance{ModID: task.Request.ModID, FileID: task.Request.FileID}
	record, err := installArchive(settings, task.FilePath, "", prov, settings.DeleteAfterInstall)
	if err != nil {
		return err
	}
	reportInstalled(record)
	return nil
}

func reportInstalled(record *model.InstallRecord) {
	if jsonOut {
		printJSON(events.Event{Type: events.TypeInstalled, Record: record})
		return
	}
	color.Green("✓ Installed %s %s", record.ModName, record.Version)
	fmt.Printf("  %s\n", record.InstallPath)
}

func updateBar(bar *pb.ProgressBar, p *model.DownloadProgress) *pb.ProgressBar {
	if bar == nil {
		bar = pb.Full.Start64(p.BytesTotal)
		bar.Set(pb.Bytes, true)
	}
	bar.SetTotal(p.BytesTotal)
	bar.SetCurrent(p.BytesDownloaded)
	return bar
}

// failureReason prefers the error recorded on the task over the event message.
func failureReason(svc *download.Service, taskID, fallback string) string {
	if task, ok := svc.Task(taskID); ok && task.Error != "" {
		return task.Error
	}
	if fallback != "" {
		return fallback
	}
	return "download failed"
}

func confirm(prompt string) bool {
	fmt.Printf("%s [Y/n] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

func printJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Println(string(data))
}
