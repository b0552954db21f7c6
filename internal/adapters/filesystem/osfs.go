// Package filesystem provides file system adapters.
package filesystem

import (
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/rig/internal/ports"
)

// backupTimeFormat stamps backup file names down to the second.
const backupTimeFormat = "20060102T150405"

// OSFileSystem implements ports.FileSystem on the real file system.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadFile reads a file and returns its contents.
func (fs *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file.
func (fs *OSFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Exists checks if a file or directory exists.
func (fs *OSFileSystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir checks if a path is a directory.
func (fs *OSFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// MkdirAll creates a directory and all necessary parents.
func (fs *OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes a file or empty directory.
func (fs *OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// Rename renames (moves) a file.
func (fs *OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// CopyFile copies a file from src to dest, preserving the source mode.
func (fs *OSFileSystem) CopyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dest, data, info.Mode())
}

// IsSymlink checks if a path is a symbolic link and returns its target.
func (fs *OSFileSystem) IsSymlink(path string) (bool, string) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, ""
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false, ""
	}
	target, err := os.Readlink(path)
	if err != nil {
		return true, ""
	}
	return true, target
}

// CreateSymlink creates a symbolic link. An existing link at the same path
// is replaced so repeated runs converge.
func (fs *OSFileSystem) CreateSymlink(target, link string) error {
	if isLink, existing := fs.IsSymlink(link); isLink {
		if existing == target {
			return nil
		}
		if err := os.Remove(link); err != nil {
			return err
		}
	}
	return os.Symlink(target, link)
}

// Backup copies path to a timestamped sibling (path.rig-backup.<stamp>)
// and returns the backup path. A missing source returns ("", nil): there
// is nothing to preserve.
func (fs *OSFileSystem) Backup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	backupPath := fmt.Sprintf("%s.rig-backup.%s", path, time.Now().Format(backupTimeFormat))
	if err := os.WriteFile(backupPath, data, info.Mode()); err != nil {
		return "", err
	}

	return backupPath, nil
}

// Ensure OSFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*OSFileSystem)(nil)
