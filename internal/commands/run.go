package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/pkg/tasks"
)

// RunCommand dispatches a named task
type RunCommand struct {
	BaseCommand
	// Runner overrides the shell runner, mainly for tests
	Runner tasks.Runner
}

// RunOptions holds command-line options for the run command
type RunOptions struct {
	TaskFileOptions
	DryRun bool `long:"dry-run" description:"Print the expanded commands instead of running them" short:"n"`
}

func newRunCommand() *RunCommand {
	return &RunCommand{BaseCommand: BaseCommand{
		Name:        "run",
		Description: "Run a task. Commands run in order and the first failing command stops the task.",
		Usage:       "[OPTIONS] TASK [ARGS...]",
		Options:     flags.PassAfterNonOption,
		Examples: []Example{
			{Command: "devtask run black", Description: "Format the code"},
			{Command: "devtask run answer day01", Description: "Pass arguments to {{args}}"},
			{Command: "devtask run " + CommonExamples.DryRun.Command + " prepre", Description: CommonExamples.DryRun.Description},
			{Command: "devtask run " + CommonExamples.Tasks.Command + " lint", Description: CommonExamples.Tasks.Description},
		},
		Placeholders: TaskPlaceholders,
		Notes: []string{
			"The exit status is the status of the first failing command, or 0.",
		},
	}}
}

// Help returns the help text for the run command
func (c *RunCommand) Help() string {
	return c.HelpFor(&RunOptions{})
}

// Synopsis returns a short description of the run command
func (c *RunCommand) Synopsis() string {
	return "Run a task"
}

// Run executes the run command
func (c *RunCommand) Run(args []string) int {
	var opts RunOptions
	remaining, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}

	if len(remaining) == 0 {
		return c.Errorf("a task name is required")
	}

	settings, _, err := c.LoadSettings()
	if err != nil {
		return c.Errorf("%v", err)
	}

	file, err := c.LoadTaskFile(opts.Tasks, settings)
	if err != nil {
		return c.Errorf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := tasks.NewDispatcher(file, c.runner())
	dispatcher.DryRun = opts.DryRun
	dispatcher.Out = c.output()

	status, err := dispatcher.Dispatch(ctx, remaining[0], remaining[1:])
	var cmdErr *tasks.CommandError
	switch {
	case err == nil:
		return status
	case errors.As(err, &cmdErr):
		// the command already reported its own failure
		return status
	case errors.Is(err, tasks.ErrTaskNotFound):
		c.Printf("Error: %v\n", err)
		c.Printf("Available tasks: %s\n", strings.Join(file.Names(), ", "))
		return 1
	default:
		c.Printf("Error: %v\n", err)
		return status
	}
}

func (c *RunCommand) runner() tasks.Runner {
	if c.Runner != nil {
		return c.Runner
	}
	runner := tasks.NewShellRunner()
	runner.Stdout = c.output()
	return runner
}

// RunCommandFactory creates a new run command instance
func RunCommandFactory() (cli.Command, error) {
	return newRunCommand(), nil
}
