package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackup_CreatesTimestampedSibling(t *testing.T) {
	fs := NewOSFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, ".zshrc")
	require.NoError(t, os.WriteFile(path, []byte("plugins=(git)\n"), 0o600))

	backupPath, err := fs.Backup(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(backupPath, path+".rig-backup."), backupPath)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "plugins=(git)\n", string(data))

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "backup preserves the source mode")
}

func TestBackup_MissingSourceIsNotAnError(t *testing.T) {
	fs := NewOSFileSystem()

	backupPath, err := fs.Backup(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, backupPath)
}

func TestCreateSymlink_ReplacesDifferingLink(t *testing.T) {
	fs := NewOSFileSystem()
	dir := t.TempDir()
	link := filepath.Join(dir, "nvim")

	require.NoError(t, fs.CreateSymlink("/opt/nvim-old/bin/nvim", link))
	require.NoError(t, fs.CreateSymlink("/opt/nvim-new/bin/nvim", link))

	isLink, target := fs.IsSymlink(link)
	require.True(t, isLink)
	assert.Equal(t, "/opt/nvim-new/bin/nvim", target)

	// Re-linking the same target is a no-op.
	require.NoError(t, fs.CreateSymlink("/opt/nvim-new/bin/nvim", link))
}

func TestIsDirAndExists(t *testing.T) {
	fs := NewOSFileSystem()
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, fs.IsDir(dir))
	assert.False(t, fs.IsDir(file))
	assert.True(t, fs.Exists(file))
	assert.False(t, fs.Exists(filepath.Join(dir, "absent")))
}
