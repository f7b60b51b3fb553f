package installer

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hrmshandy/treasure-chest/internal/archive"
	"github.com/hrmshandy/treasure-chest/internal/events"
)

func manifestJSON(name string) string {
	return fmt.Sprintf(`{"Name":"%s","Author":"Tester","Version":"1.2.0","UniqueID":"tester.%s"}`, name, name)
}

// writeZip builds a zip at path from name → content pairs. Names ending in
// "/" become directories.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			if _, err := w.Create(name); err != nil {
				t.Fatalf("Failed to add dir %s: %v", name, err)
			}
			continue
		}
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to add file %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewService(filepath.Join(root, "scratch"), filepath.Join(root, "backups"), archive.NewService())
	return svc, root
}

func TestInstallSingleFolder(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "mod_2400_file_9567.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
		"CoolMod/assets/a.png":  "png-bytes",
	})

	record, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if record.InstallPath != filepath.Join(modsRoot, "CoolMod") {
		t.Errorf("Expected install under modsRoot/CoolMod, got %s", record.InstallPath)
	}
	if record.ModName != "CoolMod" || record.Version != "1.2.0" || record.UniqueID != "tester.CoolMod" {
		t.Errorf("Unexpected record: %+v", record)
	}

	if _, err := os.Stat(filepath.Join(modsRoot, "CoolMod", "assets", "a.png")); err != nil {
		t.Errorf("Expected mod contents to be installed, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "scratch")); err == nil {
		entries, _ := os.ReadDir(filepath.Join(root, "scratch"))
		if len(entries) != 0 {
			t.Error("Expected scratch directory to be cleaned up")
		}
	}
}

func TestInstallMultiItem(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "mod-pack.zip")
	writeZip(t, archivePath, map[string]string{
		"ModA/manifest.json": manifestJSON("ModA"),
		"ModB/manifest.json": manifestJSON("ModB"),
		"ModC/manifest.json": manifestJSON("ModC"),
	})

	record, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Several top-level entries: the whole extraction installs as one target
	// named after the archive.
	if record.InstallPath != filepath.Join(modsRoot, "mod-pack") {
		t.Errorf("Expected install under modsRoot/mod-pack, got %s", record.InstallPath)
	}

	mods, err := ScanMods(modsRoot)
	if err != nil {
		t.Fatalf("Expected scan to succeed, got %v", err)
	}
	if len(mods) != 3 {
		t.Errorf("Expected scan to surface 3 mods, got %d", len(mods))
	}
}

func TestInstallFramework(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cp.zip")
	writeZip(t, archivePath, map[string]string{
		"ContentPatcher/manifest.json": manifestJSON("ContentPatcher"),
	})

	policy := Policy{AutoInstall: true, FrameworkNames: []string{"ContentPatcher", "SpaceCore"}}
	record, err := svc.InstallFromArchive(archivePath, modsRoot, policy, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := filepath.Join(modsRoot, FrameworksDirName, "ContentPatcher")
	if record.InstallPath != expected {
		t.Errorf("Expected framework install under %s, got %s", expected, record.InstallPath)
	}
	if _, err := os.Stat(filepath.Join(modsRoot, "ContentPatcher")); !os.IsNotExist(err) {
		t.Error("Expected no install directly under the mods root")
	}
}

func TestInstallBacksUpExisting(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	oldPath := filepath.Join(modsRoot, "CoolMod")
	if err := os.MkdirAll(oldPath, 0755); err != nil {
		t.Fatalf("Failed to seed old install: %v", err)
	}
	if err := os.WriteFile(filepath.Join(oldPath, "old.txt"), []byte("previous"), 0644); err != nil {
		t.Fatalf("Failed to seed old file: %v", err)
	}

	if _, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil); err != nil {
		t.Fatalf("Expected no error on reinstall, got %v", err)
	}

	backups, err := os.ReadDir(filepath.Join(root, "backups"))
	if err != nil {
		t.Fatalf("Expected backups directory, got %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 distinct backups, got %d", len(backups))
	}

	// The first backup preserves the displaced contents.
	data, err := os.ReadFile(filepath.Join(root, "backups", backups[0].Name(), "old.txt"))
	if err != nil {
		t.Fatalf("Expected backed up file, got %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("Unexpected backup content: %s", data)
	}

	if _, err := os.Stat(filepath.Join(oldPath, "old.txt")); !os.IsNotExist(err) {
		t.Error("Expected old contents to be replaced")
	}
}

func TestInstallRollbackOnCopyFailure(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	svc.copyTree = func(src, dst string) error {
		// Simulate a copy dying partway through.
		if err := os.MkdirAll(dst, 0755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dst, "partial.bin"), []byte("half"), 0644); err != nil {
			return err
		}
		return errors.New("disk full")
	}

	_, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil)
	if !errors.Is(err, ErrInstallationFailed) {
		t.Fatalf("Expected ErrInstallationFailed, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(modsRoot, "CoolMod")); !os.IsNotExist(statErr) {
		t.Error("Expected destination to be rolled back")
	}
}

func TestInstallDisplayNameHint(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	record, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true, DisplayNameHint: "Renamed Mod"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.InstallPath != filepath.Join(modsRoot, "Renamed Mod") {
		t.Errorf("Expected hint to override target name, got %s", record.InstallPath)
	}
}

func TestInstallManifestFallback(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "nomanifest.zip")
	writeZip(t, archivePath, map[string]string{
		"BareMod/readme.txt": "no manifest here",
	})

	record, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil)
	if err != nil {
		t.Fatalf("Expected fallback, not failure, got %v", err)
	}

	if record.ModName != "BareMod" {
		t.Errorf("Expected target name as mod name, got '%s'", record.ModName)
	}
	if record.Version != "Unknown" {
		t.Errorf("Expected version 'Unknown', got '%s'", record.Version)
	}
	if record.UniqueID != "BareMod" {
		t.Errorf("Expected target name as unique id, got '%s'", record.UniqueID)
	}
}

func TestInstallWritesProvenanceSidecar(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	prov := &Provenance{ModID: 2400, FileID: 9567}
	if _, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, prov); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	mods, err := ScanMods(modsRoot)
	if err != nil {
		t.Fatalf("Expected scan to succeed, got %v", err)
	}
	if len(mods) != 1 {
		t.Fatalf("Expected 1 mod, got %d", len(mods))
	}
	if mods[0].NexusModID != 2400 || mods[0].NexusFileID != 9567 {
		t.Errorf("Expected provenance to round-trip, got %+v", mods[0])
	}
}

func TestInstallDeletesArchiveWhenAsked(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	if _, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true, DeleteArchiveAfterInstall: true}, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Error("Expected archive to be deleted after install")
	}
}

func TestInstallInvalidArchive(t *testing.T) {
	svc, root := newTestService(t)

	archivePath := filepath.Join(root, "broken.zip")
	if err := os.WriteFile(archivePath, []byte("not a zip"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	_, err := svc.InstallFromArchive(archivePath, filepath.Join(root, "Mods"), Policy{AutoInstall: true}, nil)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Expected ErrExtractionFailed, got %v", err)
	}
}

func TestInstallEmitsInstalledEvent(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	var got []events.Event
	svc.SetEmitter(events.EmitterFunc(func(e events.Event) {
		got = append(got, e)
	}))

	if _, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: true}, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(got) != 1 || got[0].Type != events.TypeInstalled {
		t.Fatalf("Expected one installed event, got %+v", got)
	}
	if got[0].Record == nil || got[0].Record.ModName != "CoolMod" {
		t.Errorf("Expected record in event, got %+v", got[0].Record)
	}
}

func TestInstallRefusedWhenAutoInstallDisabled(t *testing.T) {
	svc, root := newTestService(t)
	modsRoot := filepath.Join(root, "Mods")

	archivePath := filepath.Join(root, "cool.zip")
	writeZip(t, archivePath, map[string]string{
		"CoolMod/manifest.json": manifestJSON("CoolMod"),
	})

	// An existing install must survive a refused attempt untouched.
	oldPath := filepath.Join(modsRoot, "CoolMod")
	if err := os.MkdirAll(oldPath, 0755); err != nil {
		t.Fatalf("Failed to seed old install: %v", err)
	}
	if err := os.WriteFile(filepath.Join(oldPath, "old.txt"), []byte("previous"), 0644); err != nil {
		t.Fatalf("Failed to seed old file: %v", err)
	}

	_, err := svc.InstallFromArchive(archivePath, modsRoot, Policy{AutoInstall: false}, nil)
	if !errors.Is(err, ErrInstallationFailed) {
		t.Fatalf("Expected ErrInstallationFailed, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(oldPath, "old.txt")); err != nil {
		t.Errorf("Expected existing install to be untouched, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "backups")); !os.IsNotExist(err) {
		t.Error("Expected no backup for a refused install")
	}
}

func TestReadManifestTaxonomy(t *testing.T) {
	bare := t.TempDir()
	if _, err := readManifest(bare); !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("Expected ErrManifestNotFound for empty dir, got %v", err)
	}

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "manifest.json"), []byte("{nonsense"), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	if _, err := readManifest(bad); !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("Expected ErrInvalidManifest for bad manifest, got %v", err)
	}

	good := t.TempDir()
	if err := os.WriteFile(filepath.Join(good, "manifest.json"), []byte(manifestJSON("Good")), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	m, err := readManifest(good)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Name != "Good" {
		t.Errorf("Expected name 'Good', got '%s'", m.Name)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "OnlyMod"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	unit1, name1 := classify(dir, "archive-stem")
	unit2, name2 := classify(dir, "archive-stem")

	if unit1 != unit2 || name1 != name2 {
		t.Errorf("Expected deterministic classification, got (%s,%s) and (%s,%s)", unit1, name1, unit2, name2)
	}
	if name1 != "OnlyMod" {
		t.Errorf("Expected single-folder name 'OnlyMod', got '%s'", name1)
	}
}
