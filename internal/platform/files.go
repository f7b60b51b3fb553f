package platform

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644

	// OwnerAllPermissions is OR-ed onto every entry when a recursive delete
	// hits read-only attributes shipped inside mod archives.
	OwnerAllPermissions = 0700
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// CopyDir recursively copies the contents of src into dst, creating dst if
// needed. Symlinks are not followed; regular files are copied byte for byte.
func CopyDir(src, dst string) error {
	if err := os.MkdirAll(dst, DefaultDirPermissions); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(srcPath, dstPath); err != nil {
			return fmt.Errorf("copy %s: %w", srcPath, err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePermissions)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// ForceRemoveAll removes path recursively. If a plain removal fails, every
// entry in the subtree is granted owner read/write/execute and the removal is
// retried once. Archives frequently ship entries with read-only attributes,
// which makes the first attempt fail on some platforms.
func ForceRemoveAll(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(path); err == nil {
		return nil
	}

	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // keep walking what we can
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		_ = os.Chmod(p, info.Mode().Perm()|OwnerAllPermissions)
		return nil
	})

	return os.RemoveAll(path)
}
