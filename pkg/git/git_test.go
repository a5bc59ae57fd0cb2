package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupTestRepo creates a repository with one commit holding file1.txt,
// file2.txt and dir/file3.txt
func setupTestRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range map[string]string{
		"file1.txt":     "content1",
		"file2.txt":     "content2",
		"dir/file3.txt": "content3",
	} {
		writeFile(t, dir, name, content)
		_, err = worktree.Add(name)
		require.NoError(t, err)
	}

	_, err = worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, worktree
}

func TestFindGitRoot(t *testing.T) {
	dir, _ := setupTestRepo(t)
	nested := filepath.Join(dir, "dir")

	root, err := FindGitRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	_, err = FindGitRoot(t.TempDir())
	// the temp dir could itself live inside a checkout
	if err != nil {
		assert.ErrorIs(t, err, ErrNotRepository)
	}
}

func TestFindGitRootWithGitFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git", "gitdir: /somewhere/else\n")

	root, err := FindGitRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestNewRepository(t *testing.T) {
	dir, _ := setupTestRepo(t)

	repo, err := NewRepository(filepath.Join(dir, "dir"))
	require.NoError(t, err)
	assert.Equal(t, dir, repo.Root)
}

func TestRepository_GetAllFiles(t *testing.T) {
	dir, worktree := setupTestRepo(t)
	writeFile(t, dir, "staged.py", "print('hi')\n")
	_, err := worktree.Add("staged.py")
	require.NoError(t, err)
	writeFile(t, dir, "untracked.txt", "nobody added me")

	repo, err := NewRepository(dir)
	require.NoError(t, err)

	files, err := repo.GetAllFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/file3.txt", "file1.txt", "file2.txt", "staged.py"}, files)
}

func TestRepository_GetAllFiles_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	gitRepo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := gitRepo.Worktree()
	require.NoError(t, err)

	writeFile(t, dir, "a.txt", "a")
	_, err = worktree.Add("a.txt")
	require.NoError(t, err)

	repo, err := NewRepository(dir)
	require.NoError(t, err)

	files, err := repo.GetAllFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestRepository_GetStagedFiles(t *testing.T) {
	dir, worktree := setupTestRepo(t)

	repo, err := NewRepository(dir)
	require.NoError(t, err)

	files, err := repo.GetStagedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	writeFile(t, dir, "file1.txt", "modified content")
	writeFile(t, dir, "new.txt", "new")
	_, err = worktree.Add("file1.txt")
	require.NoError(t, err)
	_, err = worktree.Add("new.txt")
	require.NoError(t, err)
	writeFile(t, dir, "file2.txt", "changed but not staged")

	files, err = repo.GetStagedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"file1.txt", "new.txt"}, files)

	added, err := repo.GetAddedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"new.txt"}, added)
}

func TestRepository_NilRepository(t *testing.T) {
	repo := &Repository{}

	_, err := repo.GetStagedFiles()
	assert.Error(t, err)
	_, err = repo.GetAllFiles()
	assert.Error(t, err)
	assert.False(t, repo.HasUnmergedFiles())
}

func TestRepository_HasUnmergedFiles(t *testing.T) {
	dir, _ := setupTestRepo(t)

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	assert.False(t, repo.HasUnmergedFiles())
}

func TestRepository_InstallUninstallHook(t *testing.T) {
	dir, _ := setupTestRepo(t)

	repo, err := NewRepository(dir)
	require.NoError(t, err)

	hookName := "pre-commit"
	hookScript := "#!/bin/sh\nexec devtask check\n"

	// go-git does not write sample hooks, but be safe
	_ = os.Remove(repo.HookPath(hookName))
	assert.False(t, repo.HasHook(hookName))

	require.NoError(t, repo.InstallHook(hookName, hookScript))
	assert.True(t, repo.HasHook(hookName))

	content, err := repo.ReadHook(hookName)
	require.NoError(t, err)
	assert.Equal(t, hookScript, content)

	info, err := os.Stat(repo.HookPath(hookName))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "hook should be executable")

	require.NoError(t, repo.UninstallHook(hookName))
	assert.False(t, repo.HasHook(hookName))

	// removing twice is fine
	require.NoError(t, repo.UninstallHook(hookName))
}

func TestRepository_InstallHook_CreatesHooksDir(t *testing.T) {
	dir, _ := setupTestRepo(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, ".git", "hooks")))

	repo, err := NewRepository(dir)
	require.NoError(t, err)

	require.NoError(t, repo.InstallHook("pre-push", "#!/bin/sh\n"))
	assert.True(t, repo.HasHook("pre-push"))
}

func TestNoGitEnv(t *testing.T) {
	env := []string{
		"PATH=/usr/bin",
		"GIT_INDEX_FILE=/repo/.git/index.lock",
		"GIT_DIR=/repo/.git",
		"GIT_SSH_COMMAND=ssh -i key",
		"GIT_CONFIG_KEY_0=core.editor",
		"GIT_CONFIG_VALUE_0=vi",
		"HOME=/home/dev",
	}

	assert.Equal(t, []string{
		"PATH=/usr/bin",
		"GIT_SSH_COMMAND=ssh -i key",
		"GIT_CONFIG_KEY_0=core.editor",
		"GIT_CONFIG_VALUE_0=vi",
		"HOME=/home/dev",
	}, NoGitEnv(env))
}
