package commands

import (
	"strings"

	"github.com/mitchellh/cli"
)

// UninstallCommand removes hook scripts written by install
type UninstallCommand struct {
	GitRepositoryCommand
}

// UninstallOptions holds command-line options for the uninstall command
type UninstallOptions struct {
	HookTypeOptions
}

func newUninstallCommand() *UninstallCommand {
	return &UninstallCommand{GitRepositoryCommand{BaseCommand{
		Name:        "uninstall",
		Description: "Remove git hook scripts installed by devtask.",
		Examples: []Example{
			{Command: "devtask uninstall", Description: "Remove the pre-commit hook"},
			{Command: "devtask uninstall -t pre-merge-commit", Description: "Remove the pre-merge-commit hook"},
		},
		Notes: []string{
			"Hook scripts not written by devtask are left alone.",
		},
	}}}
}

// Help returns the help text for the uninstall command
func (c *UninstallCommand) Help() string {
	return c.HelpFor(&UninstallOptions{})
}

// Synopsis returns a short description of the uninstall command
func (c *UninstallCommand) Synopsis() string {
	return "Uninstall git hook scripts"
}

// Run executes the uninstall command
func (c *UninstallCommand) Run(args []string) int {
	var opts UninstallOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	if err := opts.ValidateHookTypes(); err != nil {
		return c.Errorf("%v", err)
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		return c.Errorf("%v", err)
	}

	for _, hookType := range opts.GetDefaultHookTypes(hookTypePreCommit) {
		if !repo.HasHook(hookType) {
			continue
		}

		existing, err := repo.ReadHook(hookType)
		if err != nil {
			return c.Errorf("failed to read %s hook: %v", hookType, err)
		}
		if !strings.Contains(existing, hookScriptMarker) {
			c.Printf("Hook %s was not installed by devtask, leaving it\n", hookType)
			continue
		}

		if err := repo.UninstallHook(hookType); err != nil {
			return c.Errorf("failed to uninstall %s hook: %v", hookType, err)
		}
		c.Printf("%s uninstalled\n", hookType)
	}
	return 0
}

// UninstallCommandFactory creates a new uninstall command instance
func UninstallCommandFactory() (cli.Command, error) {
	return newUninstallCommand(), nil
}
