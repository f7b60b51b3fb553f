package archive

// Package archive unpacks mod archives into a scratch directory. Extraction
// normalizes permissions because archives frequently ship entries with
// restrictive or read-only attributes that would break later copy and delete
// steps.

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hrmshandy/treasure-chest/internal/platform"
)

// Permission floors OR-ed onto extracted entries.
const (
	dirModeFloor  fs.FileMode = 0700 // owner rwx on directories
	fileModeFloor fs.FileMode = 0600 // owner rw on files
)

// Service handles archive extraction.
type Service struct{}

// NewService creates a new extraction service.
func NewService() *Service {
	return &Service{}
}

// Extract unpacks the ZIP archive at archivePath into destDir, creating it if
// needed. Entries escaping destDir are skipped; permissions are normalized so
// the owner can always read, write and (for directories) traverse.
func (s *Service) Extract(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("invalid ZIP: %w", err)
	}
	defer reader.Close()

	if err := platform.CreateDirectoryIfNotExists(destDir); err != nil {
		return err
	}

	for _, file := range reader.File {
		if err := s.extractEntry(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) extractEntry(file *zip.File, destDir string) error {
	outPath, ok := safeJoin(destDir, file.Name)
	if !ok {
		// Entry would escape the scratch directory.
		return nil
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(outPath, file.Mode().Perm()|dirModeFloor)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), platform.DefaultDirPermissions|dirModeFloor); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
	}
	defer in.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = platform.DefaultFilePermissions
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode|fileModeFloor)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile honors the umask; re-assert the floor explicitly.
	return os.Chmod(outPath, mode|fileModeFloor)
}

// safeJoin joins name under dir, rejecting absolute names and path traversal.
func safeJoin(dir, name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(dir, cleaned), true
}
