// Package archive unpacks downloaded release archives.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/rig/internal/ports"
)

// TarGzExtractor implements ports.Extractor for gzip-compressed tarballs.
type TarGzExtractor struct{}

// NewTarGzExtractor creates a new TarGzExtractor.
func NewTarGzExtractor() *TarGzExtractor {
	return &TarGzExtractor{}
}

// ExtractTarGz unpacks src into destDir. Entries escaping destDir (path
// traversal) or absolute paths are rejected before anything is written.
func (e *TarGzExtractor) ExtractTarGz(src, destDir string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip %s: %w", src, err)
	}
	defer func() { _ = gz.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar %s: %w", src, err)
		}

		target, err := sanitizePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			// Links inside the archive are allowed, including relative
			// targets that go up a level; links resolving out of the
			// destination are not.
			if err := sanitizeLink(destDir, target, header.Linkname); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		default:
			// Skip device nodes and other special entries.
		}
	}
}

// sanitizePath joins name under destDir and rejects escapes.
func sanitizePath(destDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry %q: absolute path", name)
	}
	target := filepath.Join(destDir, name)
	if !within(destDir, target) {
		return "", fmt.Errorf("archive entry %q: escapes destination", name)
	}
	return target, nil
}

// sanitizeLink resolves a symlink target relative to the link's directory
// and rejects it when the resolved path leaves destDir.
func sanitizeLink(destDir, link, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("archive link %q: absolute target %q", link, linkname)
	}
	resolved := filepath.Join(filepath.Dir(link), linkname)
	if !within(destDir, resolved) {
		return fmt.Errorf("archive link %q: target %q escapes destination", link, linkname)
	}
	return nil
}

// within reports whether path is destDir itself or inside it.
func within(destDir, path string) bool {
	root := filepath.Clean(destDir)
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// writeEntry streams one regular file out of the archive.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Ensure TarGzExtractor implements ports.Extractor.
var _ ports.Extractor = (*TarGzExtractor)(nil)
