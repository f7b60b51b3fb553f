package installer

// Package installer turns a downloaded archive into an installed mod folder.
// The flow is extract to scratch, classify the layout, resolve the target
// under the mods root, back up and replace any existing install, then record
// what landed. Installation is not atomic across processes; the backup step
// is the safety net.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hrmshandy/treasure-chest/internal/archive"
	"github.com/hrmshandy/treasure-chest/internal/events"
	"github.com/hrmshandy/treasure-chest/internal/manifest"
	"github.com/hrmshandy/treasure-chest/internal/model"
	"github.com/hrmshandy/treasure-chest/internal/platform"
)

const (
	// FrameworksDirName is the reserved subfolder of the mods root where
	// framework mods are installed so they sort apart from content mods.
	FrameworksDirName = "_Frameworks"

	// MetaFileName is the hidden provenance sidecar written into an installed
	// mod directory.
	MetaFileName = ".nexus_meta"

	// DisabledSuffix marks a mod folder the loader should ignore.
	DisabledSuffix = ".disabled"

	fallbackVersion = "Unknown"
)

// Policy carries the caller's install preferences.
type Policy struct {
	AutoInstall               bool
	DeleteArchiveAfterInstall bool
	FrameworkNames            []string

	// DisplayNameHint overrides the target name derived from the archive
	// layout when set.
	DisplayNameHint string
}

// Provenance links an installed mod back to its download source.
type Provenance struct {
	ModID  int64 `json:"mod_id"`
	FileID int64 `json:"file_id"`
}

// layout is the shape of an extracted archive.
type layout int

const (
	// layoutSingleFolder: exactly one top-level entry and it is a directory.
	// That directory is the installable unit.
	layoutSingleFolder layout = iota
	// layoutMultiItem: anything else. The whole scratch directory is the
	// installable unit.
	layoutMultiItem
)

// Service orchestrates mod installation.
type Service struct {
	scratchRoot string
	backupsRoot string
	extractor   archive.Extractor
	emitter     events.Emitter

	// copyTree is swapped out by tests to force partial-copy failures.
	copyTree func(src, dst string) error
}

// NewService creates an install orchestrator. Scratch extraction happens under
// scratchRoot; displaced installs are preserved under backupsRoot.
func NewService(scratchRoot, backupsRoot string, extractor archive.Extractor) *Service {
	return &Service{
		scratchRoot: scratchRoot,
		backupsRoot: backupsRoot,
		extractor:   extractor,
		emitter:     events.Discard,
		copyTree:    platform.CopyDir,
	}
}

// SetEmitter sets the notification sink for install events.
func (s *Service) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.Discard
	}
	s.emitter = emitter
}

// InstallFromArchive extracts archivePath and installs its contents under
// modsRoot. On success the scratch directory is gone and an InstallRecord
// describes what was installed; on the handled failure paths the destination
// is rolled back and the scratch directory is still removed.
func (s *Service) InstallFromArchive(archivePath, modsRoot string, policy Policy, prov *Provenance) (*model.InstallRecord, error) {
	stem := archiveStem(archivePath)

	scratchDir := filepath.Join(s.scratchRoot, stem)
	if err := platform.ForceRemoveAll(scratchDir); err != nil {
		return nil, fmt.Errorf("%w: failed to clear scratch directory: %v", ErrIO, err)
	}
	defer func() {
		if err := platform.ForceRemoveAll(scratchDir); err != nil {
			log.Printf("Failed to remove scratch directory %s: %v", scratchDir, err)
		}
	}()

	if err := s.extractor.Extract(archivePath, scratchDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	unitPath, targetName := classify(scratchDir, stem)
	if policy.DisplayNameHint != "" {
		targetName = policy.DisplayNameHint
	}

	if !policy.AutoInstall {
		return nil, fmt.Errorf("%w: auto-install is disabled", ErrInstallationFailed)
	}

	installRoot := modsRoot
	if isFramework(targetName, policy.FrameworkNames) {
		installRoot = filepath.Join(modsRoot, FrameworksDirName)
	}
	if err := platform.CreateDirectoryIfNotExists(installRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	destPath := filepath.Join(installRoot, targetName)

	if _, err := os.Stat(destPath); err == nil {
		s.backupExisting(destPath, targetName)
		if err := platform.ForceRemoveAll(destPath); err != nil {
			return nil, fmt.Errorf("%w: failed to remove existing install: %v", ErrInstallationFailed, err)
		}
	}

	if err := s.copyTree(unitPath, destPath); err != nil {
		// Best-effort rollback so a half-copied mod never looks installed.
		if rmErr := platform.ForceRemoveAll(destPath); rmErr != nil {
			log.Printf("Failed to roll back partial install at %s: %v", destPath, rmErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrInstallationFailed, err)
	}

	record := &model.InstallRecord{
		ModName:     targetName,
		Version:     fallbackVersion,
		UniqueID:    targetName,
		InstallPath: destPath,
	}
	if m, err := readManifest(destPath); err == nil {
		record.ModName = m.Name
		record.Version = m.Version
		record.UniqueID = m.UniqueID
	} else {
		log.Printf("No usable manifest in %s, recording fallback identity: %v", destPath, err)
	}

	if prov != nil {
		if err := writeSidecar(destPath, prov); err != nil {
			log.Printf("Failed to write provenance sidecar in %s: %v", destPath, err)
		}
	}

	if policy.DeleteArchiveAfterInstall {
		if err := os.Remove(archivePath); err != nil {
			log.Printf("Failed to delete archive %s: %v", archivePath, err)
		}
	}

	s.emitter.Emit(events.Event{
		Type:    events.TypeInstalled,
		Record:  record,
		Message: fmt.Sprintf("Installed %s %s", record.ModName, record.Version),
	})

	return record, nil
}

// backupExisting copies the occupied target aside before it is replaced.
// Backup failure is logged and never aborts the install.
func (s *Service) backupExisting(destPath, targetName string) {
	backupPath := filepath.Join(s.backupsRoot, fmt.Sprintf("%s_%d", targetName, time.Now().UnixNano()))
	if err := platform.CopyDir(destPath, backupPath); err != nil {
		log.Printf("Failed to back up %s to %s: %v", destPath, backupPath, err)
		return
	}
	log.Printf("Backed up existing install to %s", backupPath)
}

// classify inspects the scratch directory's top level and returns the
// installable unit path and the default target name.
func classify(scratchDir, stem string) (string, string) {
	entries, err := os.ReadDir(scratchDir)
	if err == nil && len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(scratchDir, entries[0].Name()), entries[0].Name()
	}
	return scratchDir, stem
}

func isFramework(name string, frameworks []string) bool {
	for _, fw := range frameworks {
		if strings.EqualFold(fw, name) {
			return true
		}
	}
	return false
}

// readManifest reads the manifest of an installed mod directory, classifying
// failures into the install taxonomy.
func readManifest(dir string) (*model.ModManifest, error) {
	m, err := manifest.ParseFile(filepath.Join(dir, manifest.FileName))
	if err == nil {
		return m, nil
	}
	if errors.Is(err, manifest.ErrNotFound) {
		return nil, fmt.Errorf("%w in %s", ErrManifestNotFound, dir)
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
}

// archiveStem is the archive file name without its extension.
func archiveStem(archivePath string) string {
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeSidecar(destPath string, prov *Provenance) error {
	data, err := json.Marshal(prov)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(destPath, MetaFileName), data, platform.DefaultFilePermissions)
}

func readSidecar(dir string) (*Provenance, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, err
	}
	var prov Provenance
	if err := json.Unmarshal(data, &prov); err != nil {
		return nil, err
	}
	return &prov, nil
}
