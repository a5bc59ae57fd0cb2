package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/devtask/pkg/config"
)

const legacyHookConfig = `# hygiene first
- repo: https://github.com/pre-commit/pre-commit-hooks
  rev: v4.0.1
  hooks:
    - id: trailing-whitespace
      stages: [commit, push]
`

func TestMigrateHookConfig(t *testing.T) {
	migrated, changed, err := migrateHookConfig([]byte(legacyHookConfig))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, string(migrated), "# hygiene first")

	cfg, err := config.ParseConfig(migrated, "migrated")
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, []string{"pre-commit", "pre-push"}, cfg.Repos[0].Hooks[0].Stages)

	_, changed, err = migrateHookConfig(migrated)
	require.NoError(t, err)
	assert.False(t, changed, "already migrated")
}

func TestMigrateHookConfig_Errors(t *testing.T) {
	_, _, err := migrateHookConfig([]byte(""))
	assert.ErrorIs(t, err, config.ErrEmptyConfig)

	_, _, err = migrateHookConfig([]byte("just a string"))
	assert.Error(t, err)

	_, _, err = migrateHookConfig([]byte("repos: [unclosed"))
	assert.Error(t, err)
}

func TestMigrateConfigCommand(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, ".pre-commit-config.yaml", legacyHookConfig)

	cmd := newMigrateConfigCommand()
	out := capture(&cmd.BaseCommand)

	require.Equal(t, 0, cmd.Run([]string{"--dry-run"}))
	assert.Contains(t, out.String(), "repos:")
	assert.Equal(t, legacyHookConfig, readFile(t, dir, ".pre-commit-config.yaml"), "dry run writes nothing")

	out.Reset()
	require.Equal(t, 0, cmd.Run(nil))
	assert.Contains(t, out.String(), "migrated")
	assert.Contains(t, readFile(t, dir, ".pre-commit-config.yaml"), "repos:")

	out.Reset()
	require.Equal(t, 0, cmd.Run(nil))
	assert.Contains(t, out.String(), "No migration needed")
}
