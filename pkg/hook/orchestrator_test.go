package hook

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/hook/execution"
)

func boolPtr(b bool) *bool {
	return &b
}

func localHook(id, entry string) config.Hook {
	return config.Hook{ID: id, Name: id, Entry: entry, Language: config.LanguageSystem}
}

func newTestContext(t *testing.T, cfg *config.Config, files map[string]string) *execution.Context {
	t.Helper()
	root := t.TempDir()

	var names []string
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		names = append(names, name)
	}

	sort.Strings(names)

	require.NoError(t, cfg.Validate())
	return &execution.Context{
		Config:   cfg,
		RepoRoot: root,
		Files:    names,
	}
}

func ids(results []execution.Result) []string {
	out := make([]string, 0, len(results))
	for _, result := range results {
		out = append(out, result.Hook.ID)
	}
	return out
}

func TestOrchestrator_DeclaredOrder(t *testing.T) {
	cfg := &config.Config{Repos: []config.Repo{
		{Repo: config.LocalRepo, Hooks: []config.Hook{localHook("first", "true"), localHook("second", "true")}},
		{Repo: config.LocalRepo, Hooks: []config.Hook{localHook("third", "true")}},
	}}
	ctx := newTestContext(t, cfg, map[string]string{"advent.py": "x = 1\n"})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, ids(results))
	assert.True(t, execution.Passed(results))
	for _, result := range results {
		assert.Equal(t, []string{"advent.py"}, result.Files)
	}
}

func TestOrchestrator_FailFastByDefault(t *testing.T) {
	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
		localHook("passes", "true"),
		localHook("fails", "false"),
		localHook("never", "true"),
	}}}}
	ctx := newTestContext(t, cfg, map[string]string{"advent.py": "x = 1\n"})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, 1, results[1].ExitCode)
	assert.True(t, results[2].NotRun)
	assert.False(t, execution.Passed(results))
}

func TestOrchestrator_RunAllWhenFailFastDisabled(t *testing.T) {
	cfg := &config.Config{
		FailFast: boolPtr(false),
		Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
			localHook("fails", "false"),
			localHook("still-runs", "true"),
		}}},
	}
	ctx := newTestContext(t, cfg, map[string]string{"advent.py": "x = 1\n"})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.False(t, results[1].NotRun)
	assert.True(t, results[1].Success)
	assert.False(t, execution.Passed(results))
}

func TestOrchestrator_SkipsWithoutFiles(t *testing.T) {
	pytest := localHook("pytest", "true")
	pytest.AlwaysRun = true
	pytest.PassFilenames = boolPtr(false)

	docstrings := localHook("pydocstyle", "false")
	docstrings.Types = []string{"python"}

	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{docstrings, pytest}}}}
	ctx := newTestContext(t, cfg, map[string]string{"README.md": "# advent\n"})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Skipped)
	assert.True(t, results[0].Success)
	assert.Equal(t, execution.SkipReasonNoFiles, results[0].SkipReason)

	assert.False(t, results[1].Skipped, "always_run hooks run without files")
	assert.True(t, results[1].Success)
}

func TestOrchestrator_Filters(t *testing.T) {
	pushOnly := localHook("push-only", "true")
	pushOnly.Stages = []string{"push"}

	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
		localHook("black", "true"),
		localHook("pylint", "false"),
		pushOnly,
	}}}}

	t.Run("stage", func(t *testing.T) {
		ctx := newTestContext(t, cfg, map[string]string{"a.py": ""})
		ctx.HookStage = "pre-push"
		ctx.HookIDs = []string{"push-only"}

		results, err := NewOrchestrator(ctx).RunHooks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"push-only"}, ids(results))
	})

	t.Run("default stage excludes push hooks", func(t *testing.T) {
		ctx := newTestContext(t, cfg, map[string]string{"a.py": ""})
		ctx.Skip = []string{"pylint"}

		results, err := NewOrchestrator(ctx).RunHooks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"black", "pylint"}, ids(results))
		assert.True(t, results[1].Skipped)
		assert.Equal(t, SkipReasonEnv, results[1].SkipReason)
		assert.True(t, execution.Passed(results))
	})

	t.Run("hook ids", func(t *testing.T) {
		ctx := newTestContext(t, cfg, map[string]string{"a.py": ""})
		ctx.HookIDs = []string{"black"}

		results, err := NewOrchestrator(ctx).RunHooks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"black"}, ids(results))
	})
}

func TestOrchestrator_DefaultStages(t *testing.T) {
	cfg := &config.Config{
		DefaultStages: []string{"pre-push"},
		Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{localHook("black", "true")}}},
	}
	ctx := newTestContext(t, cfg, map[string]string{"a.py": ""})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOrchestrator_TopLevelPatterns(t *testing.T) {
	cfg := &config.Config{
		ExcludeRegex: `^vendor/`,
		Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
			localHook("list", "true"),
		}}},
	}
	ctx := newTestContext(t, cfg, map[string]string{"advent.py": "", "vendor/lib.py": ""})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"advent.py"}, results[0].Files)

	cfg.ExcludeRegex = `(`
	_, err = NewOrchestrator(ctx).RunHooks(context.Background())
	assert.Error(t, err)
}

func TestOrchestrator_BuiltinHooks(t *testing.T) {
	cfg := &config.Config{Repos: []config.Repo{{
		Repo: config.PreCommitHooksRepo,
		Rev:  "v4.0.1",
		Hooks: []config.Hook{
			{ID: "trailing-whitespace"},
			{ID: "end-of-file-fixer"},
			{ID: "check-yaml"},
		},
	}}}
	ctx := newTestContext(t, cfg, map[string]string{
		"advent.py":   "x = 1   \n",
		"config.yaml": "a: 1\n",
	})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.False(t, results[0].Success)
	assert.Equal(t, []string{"advent.py"}, results[0].Modified)
	assert.Contains(t, results[0].Output, execution.ModifiedMessage)
	assert.Contains(t, results[0].Output, "Fixing advent.py")
	assert.True(t, results[1].NotRun)
	assert.True(t, results[2].NotRun)

	data, err := os.ReadFile(filepath.Join(ctx.RepoRoot, "advent.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(data))

	// the second commit attempt passes
	results, err = NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	assert.True(t, execution.Passed(results))
}

func TestOrchestrator_SystemHookModifyingFiles(t *testing.T) {
	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
		localHook("formatter", `sh -c 'for f in "$@"; do echo "# formatted" >> "$f"; done' --`),
	}}}}
	ctx := newTestContext(t, cfg, map[string]string{"advent.py": "x = 1\n"})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Empty(t, results[0].Error)
	assert.False(t, results[0].Success, "exit 0 with modified files still fails")
	assert.Equal(t, []string{"advent.py"}, results[0].Modified)
}

func TestOrchestrator_HookEnvironment(t *testing.T) {
	t.Setenv("GIT_INDEX_FILE", "/elsewhere/index")
	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
		localHook("env", `sh -c 'test "$PRE_COMMIT" = 1 && test "$STAGE_HINT" = ci && test -z "$GIT_INDEX_FILE"'`),
	}}}}
	cfg.Repos[0].Hooks[0].AlwaysRun = true
	cfg.Repos[0].Hooks[0].PassFilenames = boolPtr(false)

	ctx := newTestContext(t, cfg, nil)
	ctx.Environment = map[string]string{"STAGE_HINT": "ci"}

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success, results[0].Output)
}

func TestOrchestrator_Timeout(t *testing.T) {
	slow := localHook("slow", "sleep 5")
	slow.AlwaysRun = true
	slow.PassFilenames = boolPtr(false)

	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{slow}}}}
	ctx := newTestContext(t, cfg, nil)
	ctx.Timeout = 100 * time.Millisecond

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Timeout)
	assert.False(t, results[0].Success)
}

func TestOrchestrator_MissingExecutable(t *testing.T) {
	cfg := &config.Config{Repos: []config.Repo{{Repo: config.LocalRepo, Hooks: []config.Hook{
		localHook("ghost", "devtask-definitely-missing-tool"),
	}}}}
	ctx := newTestContext(t, cfg, map[string]string{"a.py": ""})

	results, err := NewOrchestrator(ctx).RunHooks(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success, "a missing tool fails closed")
	assert.Contains(t, results[0].Error, "Executable not found")
}

func TestOrchestrator_NoConfig(t *testing.T) {
	_, err := NewOrchestrator(&execution.Context{}).RunHooks(context.Background())
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestNormalizeStage(t *testing.T) {
	assert.Equal(t, "pre-commit", NormalizeStage("commit"))
	assert.Equal(t, "pre-push", NormalizeStage("push"))
	assert.Equal(t, "manual", NormalizeStage("manual"))
}

func TestParseSkip(t *testing.T) {
	assert.Equal(t, []string{"black", "pylint"}, ParseSkip(" black, pylint ,,"))
	assert.Empty(t, ParseSkip(""))
}
