package nvim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rig/internal/domain/config"
	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/testutil/mocks"
)

func newProvider() *Provider {
	return NewProvider(mocks.NewCommandRunner(), mocks.NewReleaseFetcher(), mocks.NewExtractor(), mocks.NewFileSystem())
}

func nvimSettings(platform config.Platform, arch string) *config.Settings {
	return &config.Settings{
		HomeDir:    "/home/dev",
		Platform:   platform,
		Arch:       arch,
		InstallDir: "/home/dev/.local/opt",
		BinDir:     "/home/dev/.local/bin",
		Nvim: config.NvimSettings{
			MinVersion: "v0.10.0",
			Release:    "latest",
			Starter:    "NvChad/starter",
		},
	}
}

func TestProvider_CompileWithStarter(t *testing.T) {
	steps, err := newProvider().Compile(engine.NewCompileContext(nvimSettings(config.PlatformLinux, "amd64")))
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "nvim:install:binary", steps[0].ID().String())
	assert.Equal(t, "nvim:clone:starter", steps[1].ID().String())
	assert.Contains(t, steps[1].DependsOn(), steps[0].ID())
	assert.Contains(t, steps[1].DependsOn(), engine.MustNewStepID("pkg:install:git"))
}

func TestProvider_CompileWithoutStarter(t *testing.T) {
	settings := nvimSettings(config.PlatformDarwin, "arm64")
	settings.Nvim.Starter = ""

	steps, err := newProvider().Compile(engine.NewCompileContext(settings))
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "nvim:install:binary", steps[0].ID().String())
}

func TestProvider_CompileUnsupportedArch(t *testing.T) {
	_, err := newProvider().Compile(engine.NewCompileContext(nvimSettings(config.PlatformLinux, "riscv64")))
	assert.Error(t, err)
}

func TestAssetName(t *testing.T) {
	tests := []struct {
		platform config.Platform
		arch     string
		asset    string
	}{
		{config.PlatformLinux, "amd64", "nvim-linux-x86_64.tar.gz"},
		{config.PlatformLinux, "arm64", "nvim-linux-arm64.tar.gz"},
		{config.PlatformDarwin, "arm64", "nvim-macos-arm64.tar.gz"},
		{config.PlatformDarwin, "amd64", "nvim-macos-x86_64.tar.gz"},
	}
	for _, tt := range tests {
		asset, err := assetName(tt.platform, tt.arch)
		require.NoError(t, err)
		assert.Equal(t, tt.asset, asset)
	}
}

func TestStarterURL(t *testing.T) {
	assert.Equal(t, "https://github.com/NvChad/starter.git", starterURL("NvChad/starter"))
	assert.Equal(t, "https://git.example.com/me/starter.git", starterURL("https://git.example.com/me/starter.git"))
}
