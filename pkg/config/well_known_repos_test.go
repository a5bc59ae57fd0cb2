package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRepoURL(t *testing.T) {
	tests := map[string]string{
		"https://github.com/psf/black":      "https://github.com/psf/black",
		"https://github.com/psf/black.git":  "https://github.com/psf/black",
		"https://github.com/PyCQA/pylint/":  "https://github.com/pycqa/pylint",
		" https://github.com/psf/black  ":   "https://github.com/psf/black",
	}
	for input, want := range tests {
		assert.Equal(t, want, NormalizeRepoURL(input), input)
	}
}

func TestGetWellKnownHook(t *testing.T) {
	hook, ok := GetWellKnownHook("https://github.com/PyCQA/pydocstyle", "pydocstyle")
	require.True(t, ok)
	assert.Equal(t, LanguageSystem, hook.Language)
	assert.Equal(t, "pydocstyle", hook.Entry)

	_, ok = GetWellKnownHook("https://github.com/psf/black", "not-black")
	assert.False(t, ok)

	_, ok = GetWellKnownHook("https://example.com/nothing", "black")
	assert.False(t, ok)
}

func TestPopulateHookDefinitions(t *testing.T) {
	cfg := &Config{Repos: []Repo{
		{
			Repo: PreCommitHooksRepo,
			Rev:  "v4.0.1",
			Hooks: []Hook{
				{ID: "check-yaml"},
				{ID: "trailing-whitespace", Name: "Custom name", Types: []string{"python"}},
			},
		},
		{
			Repo:  BuiltinRepo,
			Hooks: []Hook{{ID: "end-of-file-fixer", Language: "system"}},
		},
		{
			Repo:  LocalRepo,
			Hooks: []Hook{{ID: "black", Entry: "black --check", Language: "system"}},
		},
	}}

	cfg.PopulateHookDefinitions()

	yamlHook := cfg.Repos[0].Hooks[0]
	assert.Equal(t, "Check Yaml", yamlHook.Name)
	assert.Equal(t, LanguageBuiltin, yamlHook.Language)
	assert.Equal(t, []string{"yaml"}, yamlHook.Types)

	custom := cfg.Repos[0].Hooks[1]
	assert.Equal(t, "Custom name", custom.Name)
	assert.Equal(t, []string{"python"}, custom.Types)

	// builtin repo always resolves to the in-process implementation
	assert.Equal(t, LanguageBuiltin, cfg.Repos[1].Hooks[0].Language)

	local := cfg.Repos[2].Hooks[0]
	assert.Equal(t, "black --check", local.Entry)
	assert.Empty(t, local.Name)
}
