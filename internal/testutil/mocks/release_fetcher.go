package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/rig/internal/ports"
)

// ReleaseFetcher is a test double for ports.ReleaseFetcher.
type ReleaseFetcher struct {
	mu       sync.Mutex
	releases map[string]*ports.Release

	ReleaseErr  error
	DownloadErr error
	Downloads   []string
}

// NewReleaseFetcher creates an empty ReleaseFetcher mock.
func NewReleaseFetcher() *ReleaseFetcher {
	return &ReleaseFetcher{
		releases: make(map[string]*ports.Release),
	}
}

// AddRelease registers a release for owner/repo at tag.
func (m *ReleaseFetcher) AddRelease(owner, repo, tag string, release *ports.Release) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[owner+"/"+repo+"@"+tag] = release
}

// Release returns the registered release or the injected error.
func (m *ReleaseFetcher) Release(_ context.Context, owner, repo, tag string) (*ports.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReleaseErr != nil {
		return nil, m.ReleaseErr
	}
	release, ok := m.releases[owner+"/"+repo+"@"+tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s@%s", ports.ErrReleaseNotFound, owner, repo, tag)
	}
	return release, nil
}

// Download records the requested URL or returns the injected error.
func (m *ReleaseFetcher) Download(_ context.Context, url, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DownloadErr != nil {
		return m.DownloadErr
	}
	m.Downloads = append(m.Downloads, url)
	return nil
}

// Extractor is a test double for ports.Extractor.
type Extractor struct {
	mu         sync.Mutex
	ExtractErr error
	Extracted  []string
}

// NewExtractor creates an Extractor mock.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractTarGz records the extraction or returns the injected error.
func (m *Extractor) ExtractTarGz(src, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExtractErr != nil {
		return m.ExtractErr
	}
	m.Extracted = append(m.Extracted, src)
	return nil
}

// Ensure the mocks implement their ports.
var (
	_ ports.ReleaseFetcher = (*ReleaseFetcher)(nil)
	_ ports.Extractor      = (*Extractor)(nil)
)
