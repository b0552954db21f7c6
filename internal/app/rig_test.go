package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rig/internal/domain/config"
	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

func linuxSettings() *config.Settings {
	s := &config.Settings{
		HomeDir:  "/home/dev",
		Username: "dev",
		Platform: config.PlatformLinux,
		Arch:     "amd64",
	}
	if err := s.ApplyDefaults(); err != nil {
		panic(err)
	}
	return s
}

func graphIDs(graph *engine.StepGraph) []string {
	steps := graph.Steps()
	ids := make([]string, 0, len(steps))
	for _, step := range steps {
		ids = append(ids, step.ID().String())
	}
	return ids
}

func TestBuildGraph_FullStepSet(t *testing.T) {
	rig := New(linuxSettings(), WithWriter(&bytes.Buffer{}))

	graph, err := rig.BuildGraph(nil, nil)
	require.NoError(t, err)

	ids := graphIDs(graph)
	for _, want := range []string{
		"pkg:update:index",
		"pkg:install:zsh",
		"pkg:install:git",
		"pkg:install:curl",
		"shell:clone:oh-my-zsh",
		"shell:init:zshrc",
		"shell:clone:zsh-autosuggestions",
		"shell:clone:zsh-syntax-highlighting",
		"shell:enable:plugins",
		"shell:edit:path",
		"shell:chsh:login-shell",
		"nvim:install:binary",
		"nvim:clone:starter",
	} {
		assert.Contains(t, ids, want)
	}
}

func TestBuildGraph_OnlyClosesOverDependencies(t *testing.T) {
	rig := New(linuxSettings(), WithWriter(&bytes.Buffer{}))

	graph, err := rig.BuildGraph([]string{"shell:clone:oh-my-zsh"}, nil)
	require.NoError(t, err)

	ids := graphIDs(graph)
	assert.Contains(t, ids, "shell:clone:oh-my-zsh")
	assert.Contains(t, ids, "pkg:install:git", "selection pulls in dependencies")
	assert.Contains(t, ids, "pkg:install:zsh")
	assert.NotContains(t, ids, "nvim:install:binary")
	assert.NotContains(t, ids, "shell:enable:plugins")
}

func TestBuildGraph_UnknownOnlyIsConfigError(t *testing.T) {
	rig := New(linuxSettings(), WithWriter(&bytes.Buffer{}))

	_, err := rig.BuildGraph([]string{"no:such:step"}, nil)
	require.Error(t, err)
	assert.True(t, engine.IsConfig(err))
}

func TestBuildGraph_SkipRemovesSteps(t *testing.T) {
	rig := New(linuxSettings(), WithWriter(&bytes.Buffer{}))

	graph, err := rig.BuildGraph(nil, []string{"nvim:clone:starter"})
	require.NoError(t, err)

	ids := graphIDs(graph)
	assert.NotContains(t, ids, "nvim:clone:starter")
	assert.Contains(t, ids, "nvim:install:binary")
}

func TestBuildGraph_UnknownSkipIsConfigError(t *testing.T) {
	rig := New(linuxSettings(), WithWriter(&bytes.Buffer{}))

	_, err := rig.BuildGraph(nil, []string{"no:such:step"})
	require.Error(t, err)
	assert.True(t, engine.IsConfig(err))
}
