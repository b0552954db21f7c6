package nvim

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rig/internal/domain/config"
)

// Upstream release coordinates.
const (
	releaseOwner = "neovim"
	releaseRepo  = "neovim"
)

// assetName returns the exact release asset filename for a platform/arch
// pair. Neovim's release assets are named per target; selection is by
// exact match only.
func assetName(platform config.Platform, arch string) (string, error) {
	switch {
	case platform == config.PlatformLinux && arch == "amd64":
		return "nvim-linux-x86_64.tar.gz", nil
	case platform == config.PlatformLinux && arch == "arm64":
		return "nvim-linux-arm64.tar.gz", nil
	case platform == config.PlatformDarwin && arch == "arm64":
		return "nvim-macos-arm64.tar.gz", nil
	case platform == config.PlatformDarwin && arch == "amd64":
		return "nvim-macos-x86_64.tar.gz", nil
	}
	return "", fmt.Errorf("no neovim release asset for %s/%s", platform, arch)
}

// extractedRoot returns the directory an asset unpacks into: the asset
// name without its .tar.gz suffix.
func extractedRoot(asset string) string {
	return strings.TrimSuffix(asset, ".tar.gz")
}
