package mocks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/rig/internal/ports"
)

// FileSystem is an in-memory test double for ports.FileSystem. Directories
// are implicit: a path is a directory when any file lives under it or it
// was created with MkdirAll.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	modes    map[string]os.FileMode
	dirs     map[string]bool
	symlinks map[string]string
	backups  []string

	WriteErr  error
	BackupErr error
}

// NewFileSystem creates an empty in-memory file system.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		modes:    make(map[string]os.FileMode),
		dirs:     make(map[string]bool),
		symlinks: make(map[string]string),
	}
}

// ReadFile returns the file's contents.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteFile stores the file.
func (m *FileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = stored
	m.modes[path] = perm
	return nil
}

// Exists checks files, directories, and symlinks.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existsLocked(path)
}

func (m *FileSystem) existsLocked(path string) bool {
	if _, ok := m.files[path]; ok {
		return true
	}
	if _, ok := m.symlinks[path]; ok {
		return true
	}
	return m.isDirLocked(path)
}

// IsDir reports whether path is a directory.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isDirLocked(path)
}

func (m *FileSystem) isDirLocked(path string) bool {
	if m.dirs[path] {
		return true
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	for file := range m.files {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	for dir := range m.dirs {
		if strings.HasPrefix(dir, prefix) {
			return true
		}
	}
	return false
}

// MkdirAll records the directory.
func (m *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

// Remove deletes a file, symlink, or empty directory.
func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		delete(m.modes, path)
		return nil
	}
	if _, ok := m.symlinks[path]; ok {
		delete(m.symlinks, path)
		return nil
	}
	if m.dirs[path] {
		delete(m.dirs, path)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

// Rename moves a file.
func (m *FileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[oldPath]
	if !ok {
		return &os.PathError{Op: "rename", Path: oldPath, Err: os.ErrNotExist}
	}
	m.files[newPath] = data
	m.modes[newPath] = m.modes[oldPath]
	delete(m.files, oldPath)
	delete(m.modes, oldPath)
	return nil
}

// CopyFile duplicates a file.
func (m *FileSystem) CopyFile(src, dest string) error {
	data, err := m.ReadFile(src)
	if err != nil {
		return err
	}
	m.mu.RLock()
	mode := m.modes[src]
	m.mu.RUnlock()
	return m.WriteFile(dest, data, mode)
}

// IsSymlink reports whether path is a recorded symlink.
func (m *FileSystem) IsSymlink(path string) (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	target, ok := m.symlinks[path]
	return ok, target
}

// CreateSymlink records a symlink.
func (m *FileSystem) CreateSymlink(target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symlinks[link] = target
	return nil
}

// Backup snapshots the file to a deterministic sibling path and records it.
func (m *FileSystem) Backup(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupErr != nil {
		return "", m.BackupErr
	}
	data, ok := m.files[path]
	if !ok {
		return "", nil
	}
	backupPath := fmt.Sprintf("%s.rig-backup.%d", path, len(m.backups))
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[backupPath] = stored
	m.modes[backupPath] = m.modes[path]
	m.backups = append(m.backups, backupPath)
	return backupPath, nil
}

// Backups returns the backup paths created so far, in order.
func (m *FileSystem) Backups() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.backups))
	copy(out, m.backups)
	return out
}

// AddFile seeds a file without going through WriteFile error injection.
func (m *FileSystem) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	m.modes[path] = 0o644
	m.dirs[filepath.Dir(path)] = true
}

// AddDir seeds a directory.
func (m *FileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
