package ports

import (
	"context"
	"errors"
)

// Release fetch errors. Callers map these onto the engine error taxonomy.
var (
	ErrReleaseNotFound = errors.New("release not found")
	ErrRateLimited     = errors.New("rate limited")
	ErrServerError     = errors.New("server error")
)

// ReleaseAsset is a downloadable artifact attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release describes a published release and its assets.
type Release struct {
	TagName string         `json:"tag_name"`
	Assets  []ReleaseAsset `json:"assets"`
}

// FindAsset returns the asset whose name matches exactly, or false.
// Asset selection is by exact filename match; fuzzy matching risks
// picking the wrong architecture.
func (r *Release) FindAsset(name string) (ReleaseAsset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return ReleaseAsset{}, false
}

// ReleaseFetcher retrieves release metadata and downloads assets.
type ReleaseFetcher interface {
	// Release fetches metadata for a release. Use tag "latest" for the
	// most recent published release.
	Release(ctx context.Context, owner, repo, tag string) (*Release, error)

	// Download fetches url into dest. Implementations must write through
	// a temporary file so a failed download never leaves a partial dest.
	Download(ctx context.Context, url, dest string) error
}

// Extractor unpacks downloaded archives.
type Extractor interface {
	// ExtractTarGz unpacks a .tar.gz archive into destDir.
	ExtractTarGz(src, destDir string) error
}
