package ports

import (
	"os"
)

// FileSystem provides the file system operations steps need. Probes use the
// read-only subset; actions that mutate a file must call Backup first.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Exists(path string) bool
	IsDir(path string) bool
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	CopyFile(src, dest string) error
	IsSymlink(path string) (isLink bool, target string)
	CreateSymlink(target, link string) error

	// Backup copies path to a timestamped sibling before mutation and
	// returns the backup path. A missing source is not an error; the
	// returned path is empty in that case.
	Backup(path string) (string, error)
}
