package shellcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePluginsLine(t *testing.T) {
	names, ok := parsePluginsLine("export ZSH=~/.oh-my-zsh\nplugins=(git docker kubectl)\nsource $ZSH/oh-my-zsh.sh\n")
	require.True(t, ok)
	assert.Equal(t, []string{"git", "docker", "kubectl"}, names)
}

func TestParsePluginsLine_Missing(t *testing.T) {
	_, ok := parsePluginsLine("export ZSH=~/.oh-my-zsh\n")
	assert.False(t, ok)
}

func TestMergePlugins_PreservesUserOrderAndDeduplicates(t *testing.T) {
	merged, changed := mergePlugins(
		[]string{"docker", "git"},
		[]string{"git", "zsh-autosuggestions"},
	)

	require.True(t, changed)
	assert.Equal(t, []string{"docker", "git", "zsh-autosuggestions"}, merged)
}

func TestMergePlugins_NoChangeWhenAllPresent(t *testing.T) {
	merged, changed := mergePlugins([]string{"git", "docker"}, []string{"git"})
	assert.False(t, changed)
	assert.Equal(t, []string{"git", "docker"}, merged)
}

func TestReplacePluginsLine_RewritesExisting(t *testing.T) {
	content := "export ZSH=~/.oh-my-zsh\nplugins=(git)\nsource $ZSH/oh-my-zsh.sh\n"

	updated := replacePluginsLine(content, []string{"git", "zsh-autosuggestions"})

	assert.Contains(t, updated, "plugins=(git zsh-autosuggestions)")
	assert.NotContains(t, updated, "plugins=(git)\n")
	assert.Contains(t, updated, "source $ZSH/oh-my-zsh.sh")
}

func TestReplacePluginsLine_AppendsWhenMissing(t *testing.T) {
	updated := replacePluginsLine("export ZSH=~/.oh-my-zsh", []string{"git"})
	assert.Contains(t, updated, "plugins=(git)")
}
