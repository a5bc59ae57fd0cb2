package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

const (
	// ExitCommandNotRunnable mirrors the shell status for a command that could not start
	ExitCommandNotRunnable = 127
	// ExitSignalBase is added to the signal number of a command killed by a signal
	ExitSignalBase = 128
)

// Invocation is one command line ready to execute
type Invocation struct {
	Task string
	Line string
	Dir  string
	Env  []string
}

// Runner executes a single command line and reports its exit status. A
// non-zero status is not an error; err is reserved for commands that could
// not be started at all.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (int, error)
}

// ShellRunner runs command lines through a POSIX shell. Output is not captured:
// the child writes straight to Stdout and Stderr.
type ShellRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Shell  string
}

// NewShellRunner creates a runner wired to the process's own standard streams
func NewShellRunner() *ShellRunner {
	return &ShellRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Shell:  "sh",
	}
}

// Run executes inv.Line with "sh -c" in inv.Dir
func (r *ShellRunner) Run(ctx context.Context, inv Invocation) (int, error) {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", inv.Line) // #nosec G204 -- running declared tasks is the point
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal or by context cancellation
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 1, fmt.Errorf("command interrupted: %w", ctxErr)
			}
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				return ExitSignalBase + int(status.Signal()), nil
			}
			return 1, nil
		}
		return code, nil
	}

	return ExitCommandNotRunnable, fmt.Errorf("failed to start %s: %w", shell, err)
}
