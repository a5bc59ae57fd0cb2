package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/blairham/devtask/pkg/logging"
	"github.com/blairham/devtask/pkg/tasks"
)

// chdirTemp moves the test into an empty temporary directory
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(logging.EnvLogLevel, "")
	t.Setenv("SKIP", "")
	return dir
}

// initRepo turns the working directory into a git repository
func initRepo(t *testing.T, dir string) *git.Worktree {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	return worktree
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func stage(t *testing.T, worktree *git.Worktree, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := worktree.Add(name)
		require.NoError(t, err)
	}
}

func commit(t *testing.T, worktree *git.Worktree) {
	t.Helper()
	_, err := worktree.Commit("test commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// capture points a command's output at a buffer
func capture(bc *BaseCommand) *bytes.Buffer {
	var buf bytes.Buffer
	bc.Out = &buf
	return &buf
}

// fakeRunner records invocations and answers with scripted exit codes
type fakeRunner struct {
	codes map[string]int
	lines []string
}

func (r *fakeRunner) Run(_ context.Context, inv tasks.Invocation) (int, error) {
	r.lines = append(r.lines, inv.Line)
	return r.codes[inv.Line], nil
}
