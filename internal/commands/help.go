package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/cli"
)

// Commands returns the factories for every devtask subcommand
func Commands() map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"run":              RunCommandFactory,
		"list":             ListCommandFactory,
		"check":            CheckCommandFactory,
		"install":          InstallCommandFactory,
		"uninstall":        UninstallCommandFactory,
		"init-templatedir": InitTemplatedirCommandFactory,
		"config":           ConfigCommandFactory,
		"config get":       ConfigGetCommandFactory,
		"config set":       ConfigSetCommandFactory,
		"config list":      ConfigListCommandFactory,
		"validate":         ValidateCommandFactory,
		"migrate-config":   MigrateConfigCommandFactory,
		"doctor":           DoctorCommandFactory,
		"sample-config":    SampleConfigCommandFactory,
		"help":             HelpCommandFactory,
	}
}

// HelpFunc renders the top-level usage listing
func HelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	var names []string
	width := 0
	for name := range cmdFactories {
		// nested subcommands are listed by their parent's help
		if strings.Contains(name, " ") {
			continue
		}
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Usage: devtask [--version] [--help] <command> [<args>]\n\n")
	b.WriteString("Run project tasks, read tool settings and run the commit-time hook pipeline.\n\n")
	b.WriteString("Available commands:\n")
	for _, name := range names {
		synopsis := ""
		if cmd, err := cmdFactories[name](); err == nil {
			synopsis = cmd.Synopsis()
		}
		fmt.Fprintf(&b, "    %-*s  %s\n", width, name, synopsis)
	}
	return b.String()
}

// HelpCommand shows help for a specific command
type HelpCommand struct {
	BaseCommand
	commands map[string]cli.CommandFactory
}

// HelpOptions holds command-line options for the help command
type HelpOptions struct{}

func newHelpCommand(commands map[string]cli.CommandFactory) *HelpCommand {
	return &HelpCommand{
		BaseCommand: BaseCommand{
			Name:        "help",
			Description: "Show help for a command.",
			Usage:       "[COMMAND...]",
			Examples: []Example{
				{Command: "devtask help run"},
				{Command: "devtask help config set"},
			},
		},
		commands: commands,
	}
}

// Help returns the help text for the help command
func (c *HelpCommand) Help() string {
	return c.HelpFor(&HelpOptions{})
}

// Synopsis returns a short description of the help command
func (c *HelpCommand) Synopsis() string {
	return "Show help for a command"
}

// Run executes the help command
func (c *HelpCommand) Run(args []string) int {
	var opts HelpOptions
	remaining, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}

	if len(remaining) == 0 {
		c.Printf("%s", HelpFunc(c.commands))
		return 0
	}

	name := strings.Join(remaining, " ")
	factory, exists := c.commands[name]
	if !exists {
		c.Printf("Unknown command: %s\n\n", name)
		c.Printf("%s", HelpFunc(c.commands))
		return 1
	}

	cmd, err := factory()
	if err != nil {
		return c.Errorf("%v", err)
	}
	c.Printf("%s", cmd.Help())
	return 0
}

// HelpCommandFactory creates a new help command instance
func HelpCommandFactory() (cli.Command, error) {
	return newHelpCommand(Commands()), nil
}
