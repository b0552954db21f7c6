package nvim

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// BinaryStep installs the Neovim release binary: fetch release metadata,
// download the exact platform asset, extract, and symlink into the bin dir.
type BinaryStep struct {
	id         engine.StepID
	minVersion string
	releaseTag string
	asset      string
	installDir string
	binDir     string
	runner     ports.CommandRunner
	fetcher    ports.ReleaseFetcher
	extractor  ports.Extractor
	fs         ports.FileSystem
}

// NewBinaryStep creates the binary install step. asset is the exact
// release asset filename for this platform.
func NewBinaryStep(minVersion, releaseTag, asset, installDir, binDir string, runner ports.CommandRunner, fetcher ports.ReleaseFetcher, extractor ports.Extractor, fs ports.FileSystem) *BinaryStep {
	return &BinaryStep{
		id:         engine.MustNewStepID("nvim:install:binary"),
		minVersion: minVersion,
		releaseTag: releaseTag,
		asset:      asset,
		installDir: installDir,
		binDir:     binDir,
		runner:     runner,
		fetcher:    fetcher,
		extractor:  extractor,
		fs:         fs,
	}
}

// ID returns the step identifier.
func (s *BinaryStep) ID() engine.StepID { return s.id }

// DependsOn returns the step dependencies.
func (s *BinaryStep) DependsOn() []engine.StepID { return nil }

// Resource returns the HTTP network tag.
func (s *BinaryStep) Resource() engine.ResourceTag { return engine.ResourceHTTPNetwork }

// Retryable marks downloads as retry candidates.
func (s *BinaryStep) Retryable() bool { return true }

// Check runs nvim --version and compares against the minimum. A missing
// binary needs apply; unparseable output is unknown.
func (s *BinaryStep) Check(ctx engine.RunContext) (engine.StepStatus, error) {
	result, err := s.runner.Run(ctx.Context(), "nvim", "--version")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return engine.StatusNeedsApply, nil
		}
		return engine.StatusUnknown, err
	}
	if !result.Success() {
		return engine.StatusNeedsApply, nil
	}

	version, ok := parseVersion(result.Stdout)
	if !ok {
		return engine.StatusUnknown, fmt.Errorf("cannot parse nvim version from %q", firstLine(result.Stdout))
	}
	if semver.Compare(version, s.minVersion) >= 0 {
		return engine.StatusSatisfied, nil
	}
	return engine.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *BinaryStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeAdd, "binary", "nvim",
		fmt.Sprintf("install %s release (>= %s)", s.releaseTag, s.minVersion)), nil
}

// Apply downloads and installs the release. A release without the expected
// asset fails before any download or extraction starts.
func (s *BinaryStep) Apply(ctx engine.RunContext) error {
	release, err := s.fetcher.Release(ctx.Context(), releaseOwner, releaseRepo, s.releaseTag)
	if err != nil {
		return classifyFetchError("fetch neovim release "+s.releaseTag, err)
	}

	asset, ok := release.FindAsset(s.asset)
	if !ok {
		return engine.NewPreconditionError("fetch neovim release "+release.TagName,
			fmt.Sprintf("release has no asset named %q", s.asset))
	}

	archivePath := filepath.Join(s.installDir, asset.Name)
	if err := s.fetcher.Download(ctx.Context(), asset.BrowserDownloadURL, archivePath); err != nil {
		return classifyFetchError("download "+asset.Name, err)
	}

	if err := s.extractor.ExtractTarGz(archivePath, s.installDir); err != nil {
		return fmt.Errorf("extract %s: %w", asset.Name, err)
	}

	if err := s.fs.MkdirAll(s.binDir, 0o755); err != nil {
		return err
	}
	nvimBinary := filepath.Join(s.installDir, extractedRoot(asset.Name), "bin", "nvim")
	if err := s.fs.CreateSymlink(nvimBinary, filepath.Join(s.binDir, "nvim")); err != nil {
		return fmt.Errorf("link nvim into %s: %w", s.binDir, err)
	}

	// The archive served its purpose.
	_ = s.fs.Remove(archivePath)
	return nil
}

// classifyFetchError maps release fetcher sentinels onto the error taxonomy.
func classifyFetchError(op string, err error) error {
	switch {
	case errors.Is(err, ports.ErrReleaseNotFound):
		return engine.NewPreconditionError(op, "release not found")
	case errors.Is(err, ports.ErrRateLimited):
		return engine.NewTransientError(op, "rate limited by the releases API", err)
	case errors.Is(err, ports.ErrServerError):
		return engine.NewTransientError(op, "releases API server error", err)
	default:
		return engine.NewTransientError(op, "fetch failed", err)
	}
}

// parseVersion extracts a semver string from nvim --version output, whose
// first line looks like "NVIM v0.10.4".
func parseVersion(output string) (string, bool) {
	fields := strings.Fields(firstLine(output))
	for _, field := range fields {
		if strings.HasPrefix(field, "v") && semver.IsValid(field) {
			return field, true
		}
	}
	return "", false
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// Ensure BinaryStep implements the step contracts.
var (
	_ engine.Step          = (*BinaryStep)(nil)
	_ engine.RetryableStep = (*BinaryStep)(nil)
)
