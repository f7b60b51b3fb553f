package model

import (
	"fmt"

	"github.com/hrmshandy/treasure-chest/internal/nxm"
)

// DownloadTask represents a single queued or running download.
type DownloadTask struct {
	ID              string         `json:"id"`
	Request         nxm.Request    `json:"nxmUrl"`
	FileName        string         `json:"fileName"`
	Status          DownloadStatus `json:"status"`
	Error           string         `json:"error,omitempty"`
	FilePath        string         `json:"filePath,omitempty"`
	BytesDownloaded int64          `json:"bytesDownloaded"`

	// BytesTotal is zero while the total size is unknown.
	BytesTotal int64 `json:"bytesTotal,omitempty"`
}

// DownloadProgress is an ephemeral progress snapshot, emitted at most once
// per 100ms of wall time per task. It is never persisted.
type DownloadProgress struct {
	TaskID          string `json:"downloadId"`
	BytesDownloaded int64  `json:"bytesDownloaded"`
	BytesTotal      int64  `json:"bytesTotal,omitempty"`
	SpeedBps        int64  `json:"speedBps"`

	// ETASeconds is -1 when the speed is zero or the total size is unknown.
	ETASeconds int64 `json:"etaSeconds"`

	// Percent is 0 while the total size is unknown.
	Percent float64 `json:"progressPercent"`
}

// ArchiveFileName returns the deterministic on-disk name for a request's
// downloaded archive.
func ArchiveFileName(req nxm.Request) string {
	return fmt.Sprintf("mod_%d_file_%d.zip", req.ModID, req.FileID)
}
