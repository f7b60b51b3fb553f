package model

// DownloadStatus represents the status of a download task. Transitions are
// linear: Queued → Downloading → Completed or Failed. Queued → Cancelled is
// also valid before a task is admitted; no backward transitions exist.
type DownloadStatus string

const (
	// StatusQueued means the task is waiting for a concurrency permit.
	StatusQueued DownloadStatus = "queued"

	// StatusDownloading means the transfer is in progress.
	StatusDownloading DownloadStatus = "downloading"

	// StatusCompleted means the transfer finished successfully.
	StatusCompleted DownloadStatus = "completed"

	// StatusFailed means the task failed with an error.
	StatusFailed DownloadStatus = "failed"

	// StatusCancelled means the task was removed from the queue before admission.
	StatusCancelled DownloadStatus = "cancelled"
)

// String returns the string representation of DownloadStatus.
func (s DownloadStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible from this status.
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}
