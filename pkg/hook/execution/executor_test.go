package execution

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/devtask/pkg/config"
)

// exitError runs a shell that exits with code to get a real ExitError
func exitError(t *testing.T, code string) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit "+code).Run()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	return err
}

func TestNewExecutor(t *testing.T) {
	ctx := &Context{Timeout: 30 * time.Second}

	executor := NewExecutor(ctx)
	assert.NotNil(t, executor)
	assert.Equal(t, ctx, executor.ctx)
}

func TestExecutor_ExecuteWithTimeout(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		timeout     time.Duration
		expectError bool
		timedOut    bool
	}{
		{name: "no timeout", args: []string{"echo", "test"}},
		{name: "with timeout - success", args: []string{"echo", "test"}, timeout: 5 * time.Second},
		{
			name:        "with timeout - timeout exceeded",
			args:        []string{"sleep", "5"},
			timeout:     100 * time.Millisecond,
			expectError: true,
			timedOut:    true,
		},
		{name: "missing executable", args: []string{"devtask-definitely-missing"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(&Context{Timeout: tt.timeout})

			output, err := executor.ExecuteWithTimeout(context.Background(), exec.Command(tt.args[0], tt.args[1:]...))

			if !tt.expectError {
				require.NoError(t, err)
				assert.Contains(t, string(output), "test")
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.timedOut, errors.Is(err, context.DeadlineExceeded))
		})
	}
}

func TestExecutor_ExecuteWithTimeout_KeepsDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command("sh", "-c", `pwd; echo "$DEVTASK_MARKER"`)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "DEVTASK_MARKER=marker-value")

	output, err := NewExecutor(&Context{}).ExecuteWithTimeout(context.Background(), cmd)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, string(output), resolved)
	assert.Contains(t, string(output), "marker-value")
}

func TestExecutor_ExecuteWithTimeout_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(&Context{}).ExecuteWithTimeout(ctx, exec.Command("sleep", "5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_ProcessExecutionResult(t *testing.T) {
	tests := []struct {
		execErr      error
		name         string
		output       string
		wantError    string
		wantExitCode int
		wantSuccess  bool
	}{
		{
			name:        "successful execution",
			output:      "success output",
			wantSuccess: true,
		},
		{
			name:         "failed execution with output",
			output:       "main.py:1:1: C0114 missing-module-docstring",
			execErr:      exitError(t, "16"),
			wantExitCode: 16,
		},
		{
			name:         "failed execution with no output",
			execErr:      exitError(t, "2"),
			wantExitCode: 2,
			wantError:    "Command failed with exit code 2",
		},
		{
			name:         "executable not found",
			execErr:      exec.Command("devtask-definitely-missing").Err,
			wantExitCode: 1,
			wantError:    "Executable not found",
		},
		{
			name:         "other error",
			execErr:      errors.New("pipe broke"),
			wantExitCode: 1,
			wantError:    "Execution error: pipe broke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(&Context{Timeout: 30 * time.Second})
			result := &Result{}

			executor.ProcessExecutionResult(result, []byte(tt.output), tt.execErr, time.Now())

			assert.Equal(t, tt.output, result.Output)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantExitCode, result.ExitCode)
			if tt.wantError == "" {
				assert.Empty(t, result.Error)
			} else {
				assert.Contains(t, result.Error, tt.wantError)
			}
			assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
		})
	}
}

func TestExecutor_ProcessExecutionResult_Timeout(t *testing.T) {
	executor := NewExecutor(&Context{Timeout: time.Second})
	result := &Result{}

	executor.ProcessExecutionResult(result, nil, context.DeadlineExceeded, time.Now())

	assert.True(t, result.Timeout)
	assert.False(t, result.Success)
	assert.Equal(t, "Hook timed out after 1s", result.Error)
}

func TestExecutor_ProcessBuiltinResult(t *testing.T) {
	executor := NewExecutor(&Context{})

	result := &Result{}
	executor.ProcessBuiltinResult(result, "", 0, time.Now())
	assert.True(t, result.Success)

	result = &Result{}
	executor.ProcessBuiltinResult(result, "big.bin (600 KB) exceeds 500 KB.", 1, time.Now())
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ExitCode)
}

func TestExecutor_MarkModified(t *testing.T) {
	executor := NewExecutor(&Context{})

	t.Run("no modifications", func(t *testing.T) {
		result := &Result{Success: true}
		executor.MarkModified(result, nil)
		assert.True(t, result.Success)
		assert.Empty(t, result.Output)
	})

	t.Run("modifications without output", func(t *testing.T) {
		result := &Result{Success: true}
		executor.MarkModified(result, []string{"a.py"})
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.ExitCode)
		assert.Equal(t, ModifiedMessage, result.Output)
		assert.Equal(t, []string{"a.py"}, result.Modified)
	})

	t.Run("modifications with output", func(t *testing.T) {
		result := &Result{Success: true, Output: "reformatted a.py"}
		executor.MarkModified(result, []string{"a.py"})
		assert.Equal(t, ModifiedMessage+"\n\nreformatted a.py", result.Output)

		// a second call does not repeat the notice
		executor.MarkModified(result, []string{"a.py"})
		assert.Equal(t, ModifiedMessage+"\n\nreformatted a.py", result.Output)
	})

	t.Run("keeps a real exit code", func(t *testing.T) {
		result := &Result{ExitCode: 123}
		executor.MarkModified(result, []string{"a.py"})
		assert.Equal(t, 123, result.ExitCode)
	})
}

func TestNotRunResult(t *testing.T) {
	result := NotRunResult(config.Hook{ID: "pydocstyle"})
	assert.True(t, result.NotRun)
	assert.False(t, result.Success)
	assert.Equal(t, "pydocstyle", result.Hook.ID)
}
