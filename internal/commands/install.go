package commands

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
)

// InstallCommand writes git hook scripts that run devtask check
type InstallCommand struct {
	GitRepositoryCommand
}

// InstallOptions holds command-line options for the install command
type InstallOptions struct {
	HookTypeOptions
	Overwrite bool `short:"f" long:"overwrite" description:"Overwrite existing hooks"`
}

func newInstallCommand() *InstallCommand {
	return &InstallCommand{GitRepositoryCommand{BaseCommand{
		Name:        "install",
		Description: "Install git hook scripts that run the hook pipeline.",
		Examples: []Example{
			{Command: "devtask install", Description: "Install the pre-commit hook"},
			{Command: "devtask install -t pre-commit -t pre-merge-commit", Description: "Also check merge commits"},
			{Command: "devtask install --overwrite", Description: "Replace an existing hook script"},
		},
		Notes: []string{
			"Available hook types: " + strings.Join(supportedHookTypes, ", "),
			"Existing hook scripts not written by devtask are kept unless --overwrite is given.",
		},
	}}}
}

// Help returns the help text for the install command
func (c *InstallCommand) Help() string {
	return c.HelpFor(&InstallOptions{})
}

// Synopsis returns a short description of the install command
func (c *InstallCommand) Synopsis() string {
	return "Install git hook scripts"
}

// Run executes the install command
func (c *InstallCommand) Run(args []string) int {
	var opts InstallOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	if err := opts.ValidateHookTypes(); err != nil {
		return c.Errorf("%v", err)
	}

	if _, _, err := c.LoadSettings(); err != nil {
		return c.Errorf("%v", err)
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		return c.Errorf("%v", err)
	}

	installed := 0
	for _, hookType := range opts.GetDefaultHookTypes(hookTypePreCommit) {
		if repo.HasHook(hookType) && !opts.Overwrite {
			existing, err := repo.ReadHook(hookType)
			if err != nil {
				return c.Errorf("failed to read %s hook: %v", hookType, err)
			}
			if !strings.Contains(existing, hookScriptMarker) {
				c.Printf("Hook %s already exists (use --overwrite to replace)\n", hookType)
				continue
			}
		}

		if err := repo.InstallHook(hookType, hookScript(hookType)); err != nil {
			return c.Errorf("failed to install %s hook: %v", hookType, err)
		}

		c.Printf("devtask installed at %s\n", repo.HookPath(hookType))
		installed++
	}

	if installed == 0 {
		c.Printf("No hooks were installed\n")
		return 1
	}
	return 0
}

// hookScript returns the script installed as .git/hooks/<hookType>. A missing
// devtask binary fails the hook rather than letting the commit through.
func hookScript(hookType string) string {
	return fmt.Sprintf(`#!/bin/sh
%s
if ! command -v devtask >/dev/null 2>&1; then
    echo "devtask: executable not found on PATH" >&2
    exit 1
fi
exec devtask check --hook-stage=%s
`, hookScriptMarker, hookType)
}

// InstallCommandFactory creates a new install command instance
func InstallCommandFactory() (cli.Command, error) {
	return newInstallCommand(), nil
}
