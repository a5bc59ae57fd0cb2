package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/cli"
)

// InitTemplatedirCommand writes hook scripts into a git template directory
type InitTemplatedirCommand struct {
	BaseCommand
}

// InitTemplatedirOptions holds command-line options for the init-templatedir command
type InitTemplatedirOptions struct {
	HookTypeOptions
}

func newInitTemplatedirCommand() *InitTemplatedirCommand {
	return &InitTemplatedirCommand{BaseCommand{
		Name:        "init-templatedir",
		Description: "Install hook scripts in a directory intended for use with 'git config init.templateDir'.",
		Usage:       "[OPTIONS] DIRECTORY",
		Examples: []Example{
			{Command: "devtask init-templatedir ~/.git-template", Description: "Set up a template directory"},
			{Command: "git config --global init.templateDir ~/.git-template", Description: "Use it for new clones"},
		},
		Notes: []string{
			"Repositories created or cloned afterwards run 'devtask check' on commit.",
		},
	}}
}

// Help returns the help text for the init-templatedir command
func (c *InitTemplatedirCommand) Help() string {
	return c.HelpFor(&InitTemplatedirOptions{})
}

// Synopsis returns a short description of the init-templatedir command
func (c *InitTemplatedirCommand) Synopsis() string {
	return "Install hook scripts in a git template directory"
}

// Run executes the init-templatedir command
func (c *InitTemplatedirCommand) Run(args []string) int {
	var opts InitTemplatedirOptions
	remaining, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}
	if len(remaining) != 1 {
		return c.Errorf("a DIRECTORY argument is required")
	}
	if err := opts.ValidateHookTypes(); err != nil {
		return c.Errorf("%v", err)
	}

	hooksDir := filepath.Join(remaining[0], "hooks")
	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return c.Errorf("failed to create hooks directory: %v", err)
	}

	for _, hookType := range opts.GetDefaultHookTypes(hookTypePreCommit) {
		hookPath := filepath.Join(hooksDir, hookType)
		if err := writeHookScript(hookPath, hookScript(hookType)); err != nil {
			return c.Errorf("%v", err)
		}
		c.Printf("devtask installed at %s\n", hookPath)
	}
	return 0
}

func writeHookScript(path, script string) error {
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		return fmt.Errorf("failed to write hook script: %w", err)
	}
	// #nosec G302 - Hook scripts need to be executable
	if err := os.Chmod(path, 0o700); err != nil {
		return fmt.Errorf("failed to make hook script executable: %w", err)
	}
	return nil
}

// InitTemplatedirCommandFactory creates a new init-templatedir command instance
func InitTemplatedirCommandFactory() (cli.Command, error) {
	return newInitTemplatedirCommand(), nil
}
