// Package commands handles building executable commands for different hook languages
package commands

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/git"
)

// ErrEmptyEntry is returned for a hook with nothing to run
var ErrEmptyEntry = errors.New("empty command")

// failScript prints the entry as the failure message followed by each file
const failScript = `printf '%s\n' "$0"; for f in "$@"; do printf '%s\n' "$f"; done; exit 1`

// Builder handles building commands for different hook languages
type Builder struct {
	repoRoot string
}

// NewBuilder creates a new command builder
func NewBuilder(repoRoot string) *Builder {
	return &Builder{repoRoot: repoRoot}
}

// BuildCommand builds an executable command for the given hook. env is
// appended to the process environment after GIT_* variables are dropped.
func (b *Builder) BuildCommand(hook config.Hook, files []string, env []string) (*exec.Cmd, error) {
	args := append([]string{}, hook.Args...)
	if ShouldPassFilenames(hook) {
		args = append(args, files...)
	}

	cmd, err := b.buildLanguageCommand(hook, args, files)
	if err != nil {
		return nil, err
	}

	cmd.Dir = b.repoRoot
	cmd.Env = append(git.NoGitEnv(os.Environ()), env...)
	return cmd, nil
}

func (b *Builder) buildLanguageCommand(hook config.Hook, args, files []string) (*exec.Cmd, error) {
	switch hook.Language {
	case config.LanguageFail:
		return b.buildFailCommand(hook.Entry, files), nil
	case config.LanguageScript:
		return b.buildScriptCommand(hook.Entry, args)
	case config.LanguageSystem, "":
		return b.buildSystemCommand(hook.Entry, args)
	case config.LanguageBuiltin:
		return nil, fmt.Errorf("hook %s runs in-process and has no command", hook.ID)
	default:
		return b.buildGenericCommand(hook.Entry, args)
	}
}

// ShouldPassFilenames determines if filenames should be passed to the hook
func ShouldPassFilenames(hook config.Hook) bool {
	if hook.PassFilenames != nil {
		return *hook.PassFilenames
	}
	return true
}

// buildFailCommand builds a command that reports the entry and files, then fails
func (b *Builder) buildFailCommand(entry string, files []string) *exec.Cmd {
	cmdArgs := append([]string{"-c", failScript, entry}, files...)
	return exec.Command("sh", cmdArgs...)
}

// buildScriptCommand runs a script shipped in the repository. An entry
// without a path separator that does not exist in the repository is
// looked up on PATH instead.
func (b *Builder) buildScriptCommand(entry string, args []string) (*exec.Cmd, error) {
	parts := strings.Fields(entry)
	if len(parts) == 0 {
		return nil, ErrEmptyEntry
	}

	script := parts[0]
	if !filepath.IsAbs(script) {
		candidate := filepath.Join(b.repoRoot, script)
		if _, err := os.Stat(candidate); err == nil || strings.ContainsRune(script, '/') {
			script = candidate
		}
	}

	cmdArgs := append(parts[1:], args...)
	return exec.Command(script, cmdArgs...), nil
}

// buildSystemCommand builds a command for a tool found on PATH
func (b *Builder) buildSystemCommand(entry string, args []string) (*exec.Cmd, error) {
	if strings.TrimSpace(entry) == "" {
		return nil, ErrEmptyEntry
	}

	if strings.HasPrefix(entry, "sh -c ") || strings.HasPrefix(entry, "bash -c ") {
		return b.buildShellCommand(entry, args), nil
	}

	parts := strings.Fields(entry)
	cmdArgs := append(parts[1:], args...)
	return exec.Command(parts[0], cmdArgs...), nil
}

// buildShellCommand builds sh -c / bash -c entries, keeping the quoted script
// intact. Remaining args become the script's positional parameters.
func (b *Builder) buildShellCommand(entry string, args []string) *exec.Cmd {
	shell, remaining, _ := strings.Cut(entry, " -c ")

	remaining = strings.TrimSuffix(remaining, " --")

	command := remaining
	if len(remaining) >= 2 && remaining[0] == '\'' && remaining[len(remaining)-1] == '\'' {
		command = remaining[1 : len(remaining)-1]
	}

	// $0 is the shell name so "$@" covers every argument
	cmdArgs := append([]string{"-c", command, shell}, args...)
	return exec.Command(shell, cmdArgs...)
}

// buildGenericCommand treats the entry as a plain executable
func (b *Builder) buildGenericCommand(entry string, args []string) (*exec.Cmd, error) {
	parts := strings.Fields(entry)
	if len(parts) == 0 {
		return nil, ErrEmptyEntry
	}
	cmdArgs := append(parts[1:], args...)
	return exec.Command(parts[0], cmdArgs...), nil
}
