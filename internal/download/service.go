package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/hrmshandy/treasure-chest/internal/events"
	"github.com/hrmshandy/treasure-chest/internal/model"
	"github.com/hrmshandy/treasure-chest/internal/nxm"
	"github.com/hrmshandy/treasure-chest/internal/platform"
)

const (
	// sampleInterval is the minimum wall time between progress snapshots.
	sampleInterval = 100 * time.Millisecond

	// transferTimeout bounds one whole download. There is no per-chunk timeout.
	transferTimeout = 5 * time.Minute

	copyBufferSize = 32 * 1024
)

// Service handles download queuing, admission and execution.
type Service struct {
	downloadDir string
	resolver    Resolver
	sem         *semaphore.Weighted
	emitter     events.Emitter
	httpClient  *http.Client

	// installedMods reads the on-disk installed set, fresh on every submit.
	installedMods func() ([]model.Mod, error)

	// queue holds every live task in submission order. queueMu also guards
	// mutation of task fields. When both locks are needed, queueMu is always
	// taken first.
	queueMu sync.RWMutex
	queue   []*model.DownloadTask

	activeMu sync.Mutex
	active   map[string]*model.DownloadTask
}

// NewService creates a new download service writing archives to downloadDir
// with at most maxConcurrent transfers in flight.
func NewService(downloadDir string, maxConcurrent int, resolver Resolver) *Service {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Service{
		downloadDir: downloadDir,
		resolver:    resolver,
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		emitter:     events.Discard,
		httpClient:  &http.Client{Timeout: transferTimeout},
		active:      make(map[string]*model.DownloadTask),
	}
}

// SetEmitter sets the notification sink for task events.
func (s *Service) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.Discard
	}
	s.emitter = emitter
}

// SetInstalledMods sets the source of the installed-mod set consulted on
// submit. Leaving it unset disables the already-installed guard.
func (s *Service) SetInstalledMods(fn func() ([]model.Mod, error)) {
	s.installedMods = fn
}

// SetHTTPClient replaces the transfer client.
func (s *Service) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Submit queues a download for req and attempts admission immediately. The
// request is rejected when it has expired or when the on-disk installed set
// already contains a mod with the same (modId, fileId) provenance.
func (s *Service) Submit(req nxm.Request) (*model.DownloadTask, error) {
	if req.IsExpired() {
		return nil, nxm.ErrExpired
	}

	if s.installedMods != nil {
		mods, err := s.installedMods()
		if err != nil {
			log.Printf("Failed to read installed mods, skipping duplicate check: %v", err)
		}
		for _, mod := range mods {
			if mod.NexusModID == req.ModID && mod.NexusFileID == req.FileID {
				return nil, fmt.Errorf("mod '%s' (version %s) is already installed and up to date", mod.Name, mod.Version)
			}
		}
	}

	task := &model.DownloadTask{
		ID:       uuid.New().String(),
		Request:  req,
		FileName: model.ArchiveFileName(req),
		Status:   model.StatusQueued,
	}

	s.queueMu.Lock()
	s.queue = append(s.queue, task)
	s.queueMu.Unlock()

	s.emitter.Emit(events.Event{Type: events.TypeQueued, TaskID: task.ID, Task: task})

	s.admitNext()

	return task, nil
}

// Cancel cancels the task with the given id. A queued task is removed
// outright; a downloading task is only marked failed, the transfer itself is
// not interrupted. Cancelling an already-terminal task is a no-op.
func (s *Service) Cancel(id string) error {
	s.queueMu.Lock()

	idx := -1
	var task *model.DownloadTask
	for i, t := range s.queue {
		if t.ID == id {
			idx = i
			task = t
			break
		}
	}
	if task == nil {
		s.queueMu.Unlock()
		return fmt.Errorf("task not found: %s", id)
	}

	switch task.Status {
	case model.StatusQueued:
		task.Status = model.StatusCancelled
		s.queue = append(s.queue[:idx], s.queue[idx+1:]...)
		s.queueMu.Unlock()
		s.emitter.Emit(events.Event{Type: events.TypeCancelled, TaskID: task.ID, Task: task})
		return nil
	case model.StatusDownloading:
		task.Status = model.StatusFailed
		task.Error = "cancelled by user"
		s.queueMu.Unlock()
		s.emitter.Emit(events.Event{Type: events.TypeFailed, TaskID: task.ID, Task: task, Message: task.Error})
		return nil
	default:
		s.queueMu.Unlock()
		return nil
	}
}

// Task returns the task with the given id.
func (s *Service) Task(id string) (*model.DownloadTask, bool) {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	for _, t := range s.queue {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// ListState returns a snapshot of all live tasks in submission order.
func (s *Service) ListState() []model.DownloadTask {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	out := make([]model.DownloadTask, 0, len(s.queue))
	for _, t := range s.queue {
		out = append(out, *t)
	}
	return out
}

// ClearTerminal removes all Completed and Failed tasks.
func (s *Service) ClearTerminal() {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	kept := s.queue[:0]
	for _, t := range s.queue {
		if t.Status != model.StatusCompleted && t.Status != model.StatusFailed {
			kept = append(kept, t)
		}
	}
	s.queue = kept
}

// admitNext promotes the oldest queued task to downloading if a permit is
// available without blocking.
func (s *Service) admitNext() {
	if !s.sem.TryAcquire(1) {
		return
	}

	s.queueMu.Lock()
	var next *model.DownloadTask
	for _, t := range s.queue {
		if t.Status == model.StatusQueued {
			next = t
			break
		}
	}
	if next == nil {
		s.queueMu.Unlock()
		s.sem.Release(1)
		return
	}
	next.Status = model.StatusDownloading
	s.queueMu.Unlock()

	s.activeMu.Lock()
	s.active[next.ID] = next
	s.activeMu.Unlock()

	go s.execute(next)
}

// execute runs one admitted task to a terminal state. The permit is released
// exactly once and admission re-invoked regardless of outcome.
func (s *Service) execute(task *model.DownloadTask) {
	defer func() {
		s.activeMu.Lock()
		delete(s.active, task.ID)
		s.activeMu.Unlock()

		s.sem.Release(1)
		s.admitNext()
	}()

	url, err := s.resolver.ResolveDownloadURL(context.Background(), task.Request)
	if err != nil {
		s.fail(task, fmt.Sprintf("failed to resolve download URL: %v", err))
		return
	}

	resp, err := s.httpClient.Get(url)
	if err != nil {
		s.fail(task, fmt.Sprintf("download request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.fail(task, fmt.Sprintf("download failed with status %s", resp.Status))
		return
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		s.fail(task, "received an HTML page instead of a file, the download link may be invalid or expired")
		return
	}

	if err := platform.CreateDirectoryIfNotExists(s.downloadDir); err != nil {
		s.fail(task, fmt.Sprintf("failed to create download directory: %v", err))
		return
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0 // unknown
	}
	s.queueMu.Lock()
	task.BytesTotal = total
	s.queueMu.Unlock()

	filePath := filepath.Join(s.downloadDir, task.FileName)
	out, err := os.Create(filePath)
	if err != nil {
		s.fail(task, fmt.Sprintf("failed to create file: %v", err))
		return
	}

	if err := s.stream(task, resp.Body, out, total); err != nil {
		out.Close()
		// The partial file is left on disk.
		s.fail(task, err.Error())
		return
	}
	if err := out.Close(); err != nil {
		s.fail(task, fmt.Sprintf("failed to finalize file: %v", err))
		return
	}

	s.complete(task, filePath)
}

// stream copies body to out, updating the task and emitting a progress
// snapshot at most once per sample interval.
func (s *Service) stream(task *model.DownloadTask, body io.Reader, out io.Writer, total int64) error {
	buf := make([]byte, copyBufferSize)
	var downloaded int64
	lastSample := time.Now()
	var bytesAtLastSample int64

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("failed to write file: %v", err)
			}
			downloaded += int64(n)

			if elapsed := time.Since(lastSample); elapsed >= sampleInterval {
				s.sample(task, downloaded, bytesAtLastSample, total, elapsed)
				lastSample = time.Now()
				bytesAtLastSample = downloaded
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("download interrupted: %v", readErr)
		}
	}

	s.queueMu.Lock()
	task.BytesDownloaded = downloaded
	s.queueMu.Unlock()

	return nil
}

// sample publishes one progress snapshot and rolls bytesDownloaded forward.
func (s *Service) sample(task *model.DownloadTask, downloaded, bytesAtLastSample, total int64, elapsed time.Duration) {
	speed := int64(float64(downloaded-bytesAtLastSample) / elapsed.Seconds())

	var eta int64 = -1
	if speed > 0 && total > 0 {
		eta = (total - downloaded) / speed
	}

	var percent float64
	if total > 0 {
		percent = float64(downloaded) / float64(total) * 100
	}

	s.queueMu.Lock()
	task.BytesDownloaded = downloaded
	s.queueMu.Unlock()

	s.emitter.Emit(events.Event{
		Type:   events.TypeProgress,
		TaskID: task.ID,
		Progress: &model.DownloadProgress{
			TaskID:          task.ID,
			BytesDownloaded: downloaded,
			BytesTotal:      total,
			SpeedBps:        speed,
			ETASeconds:      eta,
			Percent:         percent,
		},
	})
}

// complete marks task Completed. A task already marked Failed by an advisory
// cancel keeps that status.
func (s *Service) complete(task *model.DownloadTask, filePath string) {
	s.queueMu.Lock()
	if task.Status != model.StatusDownloading {
		s.queueMu.Unlock()
		return
	}
	task.Status = model.StatusCompleted
	task.FilePath = filePath
	s.queueMu.Unlock()

	s.emitter.Emit(events.Event{Type: events.TypeCompleted, TaskID: task.ID, Task: task})
}

// fail marks task Failed unless it already reached a terminal state.
func (s *Service) fail(task *model.DownloadTask, reason string) {
	s.queueMu.Lock()
	if task.Status != model.StatusDownloading {
		s.queueMu.Unlock()
		return
	}
	task.Status = model.StatusFailed
	task.Error = reason
	s.queueMu.Unlock()

	log.Printf("Download %s failed: %s", task.ID, reason)
	s.emitter.Emit(events.Event{Type: events.TypeFailed, TaskID: task.ID, Task: task, Message: reason})
}
