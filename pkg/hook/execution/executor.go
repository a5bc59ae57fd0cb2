package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/blairham/devtask/pkg/config"
)

// ModifiedMessage is reported for a hook that left files different from how it found them
const ModifiedMessage = "- files were modified by this hook"

// Executor handles the execution of individual hooks
type Executor struct {
	ctx *Context
}

// NewExecutor creates a new hook executor
func NewExecutor(ctx *Context) *Executor {
	return &Executor{ctx: ctx}
}

// ExecuteWithTimeout runs cmd bound to ctx, applying the configured timeout
// if there is one, and returns its combined output
func (e *Executor) ExecuteWithTimeout(ctx context.Context, cmd *exec.Cmd) ([]byte, error) {
	if e.ctx != nil && e.ctx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ctx.Timeout)
		defer cancel()
	}

	if cmd.Err != nil {
		return nil, cmd.Err
	}

	bound := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...)
	bound.Dir = cmd.Dir
	bound.Env = cmd.Env
	bound.Stdin = cmd.Stdin

	output, err := bound.CombinedOutput()
	if err != nil && ctx.Err() != nil {
		return output, fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return output, err
}

// ProcessExecutionResult processes the result of command execution
func (e *Executor) ProcessExecutionResult(
	result *Result,
	output []byte,
	execErr error,
	start time.Time,
) {
	result.Output = string(output)
	result.Duration = time.Since(start)

	if execErr != nil {
		result.Error = execErr.Error()
		e.processExitCode(result, execErr)

		if e.handleTimeoutError(result, execErr) {
			result.Timeout = true
		} else {
			e.handleExecutionError(result, execErr)
		}
	}

	result.Success = execErr == nil
}

// ProcessBuiltinResult records the outcome of an in-process hook
func (e *Executor) ProcessBuiltinResult(result *Result, output string, exitCode int, start time.Time) {
	result.Output = output
	result.Duration = time.Since(start)
	result.ExitCode = exitCode
	result.Success = exitCode == 0
}

// MarkModified fails a hook that changed files and prepends the modification notice
func (e *Executor) MarkModified(result *Result, modified []string) {
	if len(modified) == 0 {
		return
	}

	result.Modified = modified
	result.Success = false
	if result.ExitCode == 0 {
		result.ExitCode = 1
	}

	if strings.Contains(result.Output, ModifiedMessage) {
		return
	}
	if result.Output == "" {
		result.Output = ModifiedMessage
		return
	}
	result.Output = ModifiedMessage + "\n\n" + result.Output
}

// processExitCode extracts the exit code from an execution error
func (e *Executor) processExitCode(result *Result, execErr error) {
	var exitError *exec.ExitError
	if errors.As(execErr, &exitError) && exitError.ExitCode() > 0 {
		result.ExitCode = exitError.ExitCode()
	} else {
		result.ExitCode = 1
	}
}

// handleTimeoutError checks if the error is a timeout error
func (e *Executor) handleTimeoutError(result *Result, execErr error) bool {
	if errors.Is(execErr, context.DeadlineExceeded) {
		result.Error = fmt.Sprintf("Hook timed out after %v", e.ctx.Timeout)
		return true
	}
	return false
}

// handleExecutionError processes execution errors
func (e *Executor) handleExecutionError(result *Result, execErr error) {
	if isExecutableNotFoundError(execErr) {
		result.Error = fmt.Sprintf("Executable not found: %s", execErr.Error())
		return
	}

	var exitError *exec.ExitError
	if !errors.As(execErr, &exitError) {
		result.Error = fmt.Sprintf("Execution error: %s", execErr.Error())
		return
	}

	// linter output already explains the failure
	if strings.TrimSpace(result.Output) != "" {
		result.Error = ""
		return
	}

	result.Error = fmt.Sprintf("Command failed with exit code %d", exitError.ExitCode())
}

func isExecutableNotFoundError(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// NotRunResult records a hook that was never started because an earlier one failed
func NotRunResult(hook config.Hook) Result {
	return Result{Hook: hook, NotRun: true}
}
