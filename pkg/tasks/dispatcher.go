package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blairham/devtask/pkg/logging"
)

// Dispatcher maps task names to their command sequences and runs them
type Dispatcher struct {
	file   *File
	runner Runner
	log    *logrus.Entry

	// Dir is the working directory for every command (default: current directory)
	Dir string
	// Env is appended to the process environment of every command
	Env []string
	// DryRun prints expanded command lines to Out instead of running them
	DryRun bool
	// Out receives dry-run output
	Out io.Writer
}

// NewDispatcher creates a dispatcher over a loaded task file
func NewDispatcher(file *File, runner Runner) *Dispatcher {
	return &Dispatcher{
		file:   file,
		runner: runner,
		log:    logging.NewLogger("tasks"),
		Out:    os.Stdout,
	}
}

// Dispatch runs the named task. Commands run one at a time in declared order
// and the first non-zero status stops the task and is returned as-is. An
// unknown task name fails before any command is attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) (int, error) {
	task, err := d.file.Lookup(name)
	if err != nil {
		return 1, err
	}

	if len(args) > 0 && !task.UsesArgs() {
		return 1, fmt.Errorf("%w: %s", ErrUnexpectedArgs, name)
	}

	dir, err := d.workDir()
	if err != nil {
		return 1, err
	}

	var files []string
	if task.Files != "" {
		files, err = MatchFiles(dir, task.Files)
		if err != nil {
			return 1, fmt.Errorf("task %s: %w", name, err)
		}
		d.log.WithFields(logrus.Fields{"task": name, "pattern": task.Files, "matches": len(files)}).
			Debug("expanded files pattern")
	}

	start := time.Now()
	for i, raw := range task.Commands {
		line, ok := expandLine(raw, files, task.Files != "", args)
		if !ok {
			d.log.WithFields(logrus.Fields{"task": name, "step": i + 1}).
				Debug("no files matched, skipping command")
			continue
		}

		if d.DryRun {
			fmt.Fprintln(d.Out, line)
			continue
		}

		stepStart := time.Now()
		code, runErr := d.runner.Run(ctx, Invocation{Task: name, Line: line, Dir: dir, Env: d.Env})
		entry := d.log.WithFields(logrus.Fields{
			"task":     name,
			"step":     i + 1,
			"status":   code,
			"duration": time.Since(stepStart),
		})
		if runErr != nil {
			entry.WithError(runErr).Error("command could not be run")
			return code, fmt.Errorf("task %s: %w", name, runErr)
		}
		if code != 0 {
			entry.Info("command failed")
			return code, &CommandError{Task: name, Line: line, ExitCode: code}
		}
		entry.Debug("command succeeded")
	}

	d.log.WithFields(logrus.Fields{"task": name, "duration": time.Since(start)}).Debug("task finished")
	return 0, nil
}

func (d *Dispatcher) workDir() (string, error) {
	if d.Dir != "" {
		return d.Dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return dir, nil
}
