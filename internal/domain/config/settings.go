// Package config holds the run settings resolved once at startup.
// Nothing in the engine reads environment variables mid-run; everything a
// step needs (home directory, plugin dir, target shell) comes from here.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Platform identifies the host OS family for strategy selection.
type Platform string

const (
	// PlatformLinux selects the apt package manager strategy.
	PlatformLinux Platform = "linux"
	// PlatformDarwin selects the brew package manager strategy.
	PlatformDarwin Platform = "macos"
)

// Plugin describes an Oh My Zsh plugin to enable. Builtin plugins have no
// repo; custom plugins are cloned into the custom plugin directory.
type Plugin struct {
	Name string `yaml:"name" toml:"name"`
	Repo string `yaml:"repo,omitempty" toml:"repo,omitempty"`
}

// NvimSettings configures the Neovim installation.
type NvimSettings struct {
	// MinVersion is the lowest acceptable installed version (e.g. "v0.10.0").
	MinVersion string `yaml:"min_version,omitempty" toml:"min_version,omitempty"`
	// Release is the GitHub release tag to install, or "latest".
	Release string `yaml:"release,omitempty" toml:"release,omitempty"`
	// Starter is the config starter repo (owner/name), e.g. "NvChad/starter".
	Starter string `yaml:"starter,omitempty" toml:"starter,omitempty"`
}

// ShellSettings configures the Zsh setup.
type ShellSettings struct {
	// Target is the login shell path to set, e.g. "/usr/bin/zsh".
	Target string `yaml:"target,omitempty" toml:"target,omitempty"`
	// Plugins lists Oh My Zsh plugins to enable.
	Plugins []Plugin `yaml:"plugins,omitempty" toml:"plugins,omitempty"`
	// PathDirs are directories to prepend to PATH via the managed block.
	PathDirs []string `yaml:"path_dirs,omitempty" toml:"path_dirs,omitempty"`
}

// Settings is the explicit configuration for one provisioning run.
type Settings struct {
	HomeDir         string        `yaml:"home_dir,omitempty" toml:"home_dir,omitempty"`
	Username        string        `yaml:"username,omitempty" toml:"username,omitempty"`
	Platform        Platform      `yaml:"platform,omitempty" toml:"platform,omitempty"`
	Arch            string        `yaml:"arch,omitempty" toml:"arch,omitempty"`
	CustomPluginDir string        `yaml:"custom_plugin_dir,omitempty" toml:"custom_plugin_dir,omitempty"`
	InstallDir      string        `yaml:"install_dir,omitempty" toml:"install_dir,omitempty"`
	BinDir          string        `yaml:"bin_dir,omitempty" toml:"bin_dir,omitempty"`
	Packages        []string      `yaml:"packages,omitempty" toml:"packages,omitempty"`
	Shell           ShellSettings `yaml:"shell,omitempty" toml:"shell,omitempty"`
	Nvim            NvimSettings  `yaml:"nvim,omitempty" toml:"nvim,omitempty"`
}

// Load reads settings from a YAML or TOML file (by extension), fills
// defaults, and validates the result.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UserError{
			Message:    fmt.Sprintf("cannot read config file %s", path),
			Suggestion: "Create a rig.yaml (or rig.toml) in the working directory, or pass --config.",
			Underlying: err,
		}
	}

	s := &Settings{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, &UserError{
				Message:    fmt.Sprintf("invalid YAML in %s", path),
				Suggestion: "Check indentation and quoting.",
				Underlying: err,
			}
		}
	case ".toml":
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, &UserError{
				Message:    fmt.Sprintf("invalid TOML in %s", path),
				Suggestion: "Check key names and table headers.",
				Underlying: err,
			}
		}
	default:
		return nil, &UserError{
			Message:    fmt.Sprintf("unsupported config format %q", filepath.Ext(path)),
			Suggestion: "Use a .yaml or .toml config file.",
		}
	}

	if err := s.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns settings with every field defaulted, for runs without a
// config file.
func Default() (*Settings, error) {
	s := &Settings{}
	if err := s.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyDefaults resolves unset fields from the host once, at startup.
func (s *Settings) ApplyDefaults() error {
	if s.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return &UserError{
				Message:    "cannot determine home directory",
				Suggestion: "Set home_dir in the config file.",
				Underlying: err,
			}
		}
		s.HomeDir = home
	}
	if s.Username == "" {
		if u, err := user.Current(); err == nil {
			s.Username = u.Username
		}
	}
	if s.Platform == "" {
		switch runtime.GOOS {
		case "darwin":
			s.Platform = PlatformDarwin
		default:
			s.Platform = PlatformLinux
		}
	}
	if s.Arch == "" {
		s.Arch = runtime.GOARCH
	}
	if s.CustomPluginDir == "" {
		s.CustomPluginDir = filepath.Join(s.HomeDir, ".oh-my-zsh", "custom", "plugins")
	}
	if s.InstallDir == "" {
		s.InstallDir = filepath.Join(s.HomeDir, ".local", "opt")
	}
	if s.BinDir == "" {
		s.BinDir = filepath.Join(s.HomeDir, ".local", "bin")
	}
	if len(s.Packages) == 0 {
		s.Packages = []string{"zsh", "git", "curl"}
	}
	if s.Shell.Target == "" {
		if s.Platform == PlatformDarwin {
			s.Shell.Target = "/bin/zsh"
		} else {
			s.Shell.Target = "/usr/bin/zsh"
		}
	}
	if len(s.Shell.Plugins) == 0 {
		s.Shell.Plugins = []Plugin{
			{Name: "git"},
			{Name: "zsh-autosuggestions", Repo: "https://github.com/zsh-users/zsh-autosuggestions"},
			{Name: "zsh-syntax-highlighting", Repo: "https://github.com/zsh-users/zsh-syntax-highlighting"},
		}
	}
	if len(s.Shell.PathDirs) == 0 {
		s.Shell.PathDirs = []string{s.BinDir}
	}
	if s.Nvim.MinVersion == "" {
		s.Nvim.MinVersion = "v0.10.0"
	}
	if s.Nvim.Release == "" {
		s.Nvim.Release = "latest"
	}
	if s.Nvim.Starter == "" {
		s.Nvim.Starter = "NvChad/starter"
	}
	return nil
}

// Validate rejects settings the providers cannot work with.
func (s *Settings) Validate() error {
	if s.Platform != PlatformLinux && s.Platform != PlatformDarwin {
		return &UserError{
			Message:    fmt.Sprintf("unsupported platform %q", s.Platform),
			Suggestion: `Set platform to "linux" or "macos".`,
		}
	}
	if !filepath.IsAbs(s.HomeDir) {
		return &UserError{
			Message:    fmt.Sprintf("home_dir must be absolute, got %q", s.HomeDir),
			Suggestion: "Use an absolute path like /home/you.",
		}
	}
	if !strings.HasPrefix(s.Shell.Target, "/") {
		return &UserError{
			Message:    fmt.Sprintf("shell.target must be an absolute path, got %q", s.Shell.Target),
			Suggestion: "Use the full shell path, e.g. /usr/bin/zsh.",
		}
	}
	for _, p := range s.Shell.Plugins {
		if p.Name == "" {
			return &UserError{
				Message:    "shell plugin with empty name",
				Suggestion: "Every plugin entry needs a name.",
			}
		}
	}
	if s.Nvim.Starter != "" && !strings.Contains(s.Nvim.Starter, "/") {
		return &UserError{
			Message:    fmt.Sprintf("nvim.starter must be owner/name, got %q", s.Nvim.Starter),
			Suggestion: "Example: NvChad/starter.",
		}
	}
	return nil
}

// ZshrcPath returns the path of the interactive shell startup file.
func (s *Settings) ZshrcPath() string {
	return filepath.Join(s.HomeDir, ".zshrc")
}

// BashrcPath returns the bash startup file used for the last-resort
// login-shell fallback.
func (s *Settings) BashrcPath() string {
	return filepath.Join(s.HomeDir, ".bashrc")
}

// OhMyZshDir returns the Oh My Zsh installation directory.
func (s *Settings) OhMyZshDir() string {
	return filepath.Join(s.HomeDir, ".oh-my-zsh")
}

// NvimConfigDir returns the Neovim user configuration directory.
func (s *Settings) NvimConfigDir() string {
	return filepath.Join(s.HomeDir, ".config", "nvim")
}
