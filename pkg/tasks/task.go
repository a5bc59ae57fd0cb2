// Package tasks implements the task table and the fail-fast task dispatcher.
//
// A task is a named, ordered list of shell command lines. Tasks are stateless:
// every invocation spawns fresh processes and nothing is carried over between
// runs or between tasks.
package tasks

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Placeholders expanded in command lines
const (
	FilesPlaceholder = "{{files}}"
	ArgsPlaceholder  = "{{args}}"
)

var (
	// ErrTaskNotFound is returned when a task name is not declared
	ErrTaskNotFound = errors.New("no such task")
	// ErrDuplicateTask is returned when a name is declared twice in one file
	ErrDuplicateTask = errors.New("duplicate task name")
	// ErrEmptyTaskName is returned for a task declared without a name
	ErrEmptyTaskName = errors.New("task name is required")
	// ErrNoTaskFile is returned by Discover when no well-known task file exists
	ErrNoTaskFile = errors.New("no task file found")
	// ErrUnexpectedArgs is returned when arguments are given to a task that never uses them
	ErrUnexpectedArgs = errors.New("task does not accept arguments")
)

// Task is a single declared task
type Task struct {
	Name     string   `yaml:"name"`
	Comment  string   `yaml:"comment,omitempty"`
	Files    string   `yaml:"files,omitempty"`
	Commands []string `yaml:"commands"`
}

// File is an ordered table of tasks loaded from one task file
type File struct {
	Path  string `yaml:"-"`
	Tasks []Task `yaml:"tasks"`
}

// Validate checks that every task has a name and that names are unique
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Tasks))
	for i, task := range f.Tasks {
		name := strings.TrimSpace(task.Name)
		if name == "" {
			return fmt.Errorf("task %d: %w", i, ErrEmptyTaskName)
		}
		if seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, name)
		}
		seen[name] = true
	}
	return nil
}

// Lookup finds a task by name
func (f *File) Lookup(name string) (*Task, error) {
	for i := range f.Tasks {
		if f.Tasks[i].Name == name {
			return &f.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
}

// Names returns task names in declaration order
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tasks))
	for _, task := range f.Tasks {
		names = append(names, task.Name)
	}
	return names
}

// UsesArgs reports whether any command line takes the {{args}} placeholder
func (t *Task) UsesArgs() bool {
	return slices.ContainsFunc(t.Commands, func(line string) bool {
		return strings.Contains(line, ArgsPlaceholder)
	})
}

// CommandError reports the first command of a task that exited non-zero
type CommandError struct {
	Task     string
	Line     string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("task %s: command %q exited with status %d", e.Task, e.Line, e.ExitCode)
}
