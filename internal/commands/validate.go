package commands

import (
	"errors"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/tasks"
	"github.com/blairham/devtask/pkg/toolconfig"
)

// ValidateCommand checks the task file, the hook config and pyproject.toml
type ValidateCommand struct {
	BaseCommand
}

// ValidateOptions holds command-line options for the validate command
type ValidateOptions struct {
	TaskFileOptions
	Config string `long:"config" description:"Path to the hook config (default: hook-config setting)" short:"c"`
}

func newValidateCommand() *ValidateCommand {
	return &ValidateCommand{BaseCommand{
		Name:        "validate",
		Description: "Validate the task file, the hook config and pyproject.toml.",
		Examples: []Example{
			{Command: "devtask validate", Description: "Check everything in the working directory"},
			{Command: "devtask validate -c ci-hooks.yaml", Description: "Check a specific hook config"},
		},
		Notes: []string{
			"Files that do not exist are reported and skipped.",
			"Returns exit code 0 if every file that exists is valid.",
		},
	}}
}

// Help returns the help text for the validate command
func (c *ValidateCommand) Help() string {
	return c.HelpFor(&ValidateOptions{})
}

// Synopsis returns a short description of the validate command
func (c *ValidateCommand) Synopsis() string {
	return "Validate configuration files"
}

// Run executes the validate command
func (c *ValidateCommand) Run(args []string) int {
	var opts ValidateOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	failed := false
	report := func(name string, err error) {
		switch {
		case err == nil:
			c.Printf("%s: ok\n", name)
		case errors.Is(err, os.ErrNotExist), errors.Is(err, tasks.ErrNoTaskFile):
			c.Printf("%s: not found, skipped\n", name)
		default:
			c.Printf("%s: %v\n", name, err)
			failed = true
		}
	}

	settings, provider, err := c.LoadSettings()
	if err == nil {
		err = validateManifest(provider)
	}
	report(toolconfig.DefaultFileName, err)

	taskPath, err := ResolveTaskFile(opts.Tasks, settings)
	if err == nil {
		_, err = tasks.Load(taskPath)
	} else {
		taskPath = "task file"
	}
	report(taskPath, err)

	configPath := opts.Config
	if configPath == "" {
		configPath = settings.HookConfig
	}
	report(configPath, validateHookConfig(configPath))

	if failed {
		return 1
	}
	return 0
}

// validateManifest decodes the typed views so that malformed tables surface
func validateManifest(provider *toolconfig.Provider) error {
	if provider.Path() == "" {
		return os.ErrNotExist
	}
	if provider.Has("tool.poetry") || provider.Has("project") {
		if _, err := provider.Project(); err != nil {
			return err
		}
	}
	if _, err := provider.DevDependencies(); err != nil {
		return err
	}
	if _, err := provider.Black(); err != nil {
		return err
	}
	_, err := provider.Pylint()
	return err
}

func validateHookConfig(path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// ValidateCommandFactory creates a new validate command instance
func ValidateCommandFactory() (cli.Command, error) {
	return newValidateCommand(), nil
}
