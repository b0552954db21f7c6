// Package github fetches release metadata and assets from the GitHub
// releases API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/rig/internal/ports"
)

const defaultBaseURL = "https://api.github.com"

// ReleasesClient implements ports.ReleaseFetcher against the GitHub REST
// API. It is unauthenticated; the unauthenticated rate limit is plenty for
// one release lookup per run.
type ReleasesClient struct {
	baseURL string
	client  *http.Client
}

// ReleasesClientOption configures the client.
type ReleasesClientOption func(*ReleasesClient)

// WithBaseURL overrides the API base URL. Tests point this at a local
// server.
func WithBaseURL(baseURL string) ReleasesClientOption {
	return func(c *ReleasesClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ReleasesClientOption {
	return func(c *ReleasesClient) {
		c.client = client
	}
}

// NewReleasesClient creates a ReleasesClient.
func NewReleasesClient(opts ...ReleasesClientOption) *ReleasesClient {
	c := &ReleasesClient{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Release fetches release metadata. Tag "latest" resolves to the most
// recent published release.
func (c *ReleasesClient) Release(ctx context.Context, owner, repo, tag string) (*ports.Release, error) {
	var endpoint string
	if tag == "" || tag == "latest" {
		endpoint = fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	} else {
		endpoint = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, owner, repo, url.PathEscape(tag))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("%s/%s@%s: %w", owner, repo, tag, err)
	}

	var release ports.Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release %s/%s@%s: %w", owner, repo, tag, err)
	}

	return &release, nil
}

// Download fetches url into dest. The body streams into a temporary file
// next to dest which is renamed only after the full body arrived, so an
// interrupted download never leaves a partial dest behind.
func (c *ReleasesClient) Download(ctx context.Context, assetURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode); err != nil {
		return fmt.Errorf("download %s: %w", assetURL, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, dest)
}

// statusError maps an HTTP status onto the port's sentinel errors.
func statusError(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return ports.ErrReleaseNotFound
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return ports.ErrRateLimited
	case status >= 500:
		return ports.ErrServerError
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}

// Ensure ReleasesClient implements ports.ReleaseFetcher.
var _ ports.ReleaseFetcher = (*ReleasesClient)(nil)
