// Package git locates the repository devtask runs in, lists the files a hook
// pipeline checks, and manages the scripts under .git/hooks.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned when no enclosing git repository exists
var ErrNotRepository = errors.New("not in a git repository")

var errNotInitialized = errors.New("repository is not initialized")

// Repository represents a git repository
type Repository struct {
	repo *git.Repository
	Root string
}

// NewRepository opens the repository enclosing path
func NewRepository(path string) (*Repository, error) {
	root, err := FindGitRoot(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{
		Root: root,
		repo: repo,
	}, nil
}

// FindGitRoot walks up from path until it finds a directory holding .git
func FindGitRoot(path string) (string, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		gitDir := filepath.Join(path, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			if info.IsDir() {
				return path, nil
			}
			// worktrees and submodules point at their git dir from a file
			// #nosec G304 -- reading git metadata
			if content, err := os.ReadFile(gitDir); err == nil &&
				strings.HasPrefix(strings.TrimSpace(string(content)), "gitdir: ") {
				return path, nil
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", ErrNotRepository
		}
		path = parent
	}
}

// IsInRepository checks if we're in a git repository
func IsInRepository() bool {
	_, err := FindGitRoot("")
	return err == nil
}

func (r *Repository) status() (git.Status, error) {
	if r.repo == nil {
		return nil, errNotInitialized
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return status, nil
}

// GetStagedFiles returns the sorted list of files added, copied or modified in the index
func (r *Repository) GetStagedFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool)
	for file, fileStatus := range status {
		switch fileStatus.Staging {
		case git.Added, git.Modified, git.Copied, git.Renamed:
			fileSet[file] = true
		}
	}

	return sortedFiles(fileSet), nil
}

// GetAddedFiles returns the sorted list of files that are new in the index
func (r *Repository) GetAddedFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool)
	for file, fileStatus := range status {
		if fileStatus.Staging == git.Added {
			fileSet[file] = true
		}
	}

	return sortedFiles(fileSet), nil
}

// GetAllFiles returns every tracked file: the HEAD tree plus whatever is
// staged on top of it. Untracked and deleted files are left out.
func (r *Repository) GetAllFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool)
	r.addHeadFilesToSet(fileSet)

	for file, fileStatus := range status {
		switch {
		case fileStatus.Staging == git.Untracked:
			delete(fileSet, file)
		case fileStatus.Staging == git.Deleted || fileStatus.Worktree == git.Deleted:
			delete(fileSet, file)
		case fileStatus.Staging != git.Unmodified:
			fileSet[file] = true
		}
	}

	return sortedFiles(fileSet), nil
}

// addHeadFilesToSet adds the files of the HEAD commit. A repository without
// commits simply contributes nothing.
func (r *Repository) addHeadFilesToSet(fileSet map[string]bool) {
	head, err := r.repo.Head()
	if err != nil {
		return
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return
	}

	tree, err := commit.Tree()
	if err != nil {
		return
	}

	//nolint:errcheck // best-effort file collection
	tree.Files().ForEach(func(f *object.File) error {
		fileSet[f.Name] = true
		return nil
	})
}

func sortedFiles(fileSet map[string]bool) []string {
	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// HasUnmergedFiles checks if there are unmerged files in the repository
func (r *Repository) HasUnmergedFiles() bool {
	status, err := r.status()
	if err != nil {
		return false
	}

	for _, fileStatus := range status {
		if fileStatus.Staging == git.UpdatedButUnmerged ||
			fileStatus.Worktree == git.UpdatedButUnmerged {
			return true
		}
	}
	return false
}

// HookPath returns the path of the named script under .git/hooks
func (r *Repository) HookPath(hookName string) string {
	return filepath.Join(r.Root, ".git", "hooks", hookName)
}

// InstallHook writes an executable hook script
func (r *Repository) InstallHook(hookName, script string) error {
	hooksDir := filepath.Join(r.Root, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := r.HookPath(hookName)
	if err := os.WriteFile(hookPath, []byte(script), 0o600); err != nil {
		return fmt.Errorf("failed to write hook file: %w", err)
	}

	// #nosec G302 - Hook scripts need to be executable
	if err := os.Chmod(hookPath, 0o700); err != nil {
		return fmt.Errorf("failed to make hook executable: %w", err)
	}

	return nil
}

// UninstallHook removes a git hook; a missing hook is not an error
func (r *Repository) UninstallHook(hookName string) error {
	if err := os.Remove(r.HookPath(hookName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove hook: %w", err)
	}
	return nil
}

// HasHook checks if a hook is installed
func (r *Repository) HasHook(hookName string) bool {
	_, err := os.Stat(r.HookPath(hookName))
	return err == nil
}

// ReadHook returns the content of an installed hook script
func (r *Repository) ReadHook(hookName string) (string, error) {
	content, err := os.ReadFile(r.HookPath(hookName)) // #nosec G304 -- path under .git/hooks
	if err != nil {
		return "", fmt.Errorf("failed to read hook %s: %w", hookName, err)
	}
	return string(content), nil
}
