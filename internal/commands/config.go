package commands

import (
	"errors"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/pkg/toolconfig"
)

// ConfigCommand is the parent of the config subcommands
type ConfigCommand struct {
	BaseCommand
}

// Help returns the help text for the config command
func (c *ConfigCommand) Help() string {
	return `Usage: devtask config <get|set|list> [ARGS]

Read and write tool settings in pyproject.toml. Keys are dotted paths,
for example tool.black.line-length.

Subcommands:
  get KEY          Print the value stored at KEY
  set KEY VALUE    Store VALUE at KEY and save the file
  list [PREFIX]    Print every key under PREFIX with its value
`
}

// Synopsis returns a short description of the config command
func (c *ConfigCommand) Synopsis() string {
	return "Read and write tool settings in pyproject.toml"
}

// Run shows help; the work is done by the subcommands
func (c *ConfigCommand) Run(_ []string) int {
	return cli.RunResultHelp
}

// ConfigFileOptions selects the manifest
type ConfigFileOptions struct {
	File string `long:"file" description:"Path to the manifest" default:"pyproject.toml"`
}

// ConfigGetCommand prints one value
type ConfigGetCommand struct {
	BaseCommand
}

func newConfigGetCommand() *ConfigGetCommand {
	return &ConfigGetCommand{BaseCommand{
		Name:        "config get",
		Description: "Print the value stored at KEY.",
		Usage:       "[OPTIONS] KEY",
		Examples: []Example{
			{Command: "devtask config get tool.black.line-length"},
			{Command: `devtask config get 'tool.pylint."messages control".disable'`, Description: "Quote segments containing dots or spaces"},
		},
	}}
}

// Help returns the help text for the config get command
func (c *ConfigGetCommand) Help() string {
	return c.HelpFor(&ConfigFileOptions{})
}

// Synopsis returns a short description of the config get command
func (c *ConfigGetCommand) Synopsis() string {
	return "Print a tool setting"
}

// Run executes the config get command
func (c *ConfigGetCommand) Run(args []string) int {
	var opts ConfigFileOptions
	remaining, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}
	if len(remaining) != 1 {
		return c.Errorf("expected exactly one KEY")
	}

	provider, err := toolconfig.Load(opts.File)
	if err != nil {
		return c.Errorf("%v", err)
	}

	value, err := provider.Get(remaining[0])
	if err != nil {
		return c.Errorf("%v", err)
	}

	c.Printf("%s\n", toolconfig.FormatValue(value))
	return 0
}

// ConfigSetCommand stores one value and saves the manifest
type ConfigSetCommand struct {
	BaseCommand
}

func newConfigSetCommand() *ConfigSetCommand {
	return &ConfigSetCommand{BaseCommand{
		Name:        "config set",
		Description: "Store VALUE at KEY and save the manifest.",
		Usage:       "[OPTIONS] KEY VALUE",
		Examples: []Example{
			{Command: "devtask config set tool.black.line-length 100", Description: "Stored as an integer"},
			{Command: `devtask config set tool.pylint.good-names '["i", "j"]'`, Description: "Stored as an array"},
		},
		Notes: []string{
			"VALUE is read as a TOML value when it parses as one, otherwise as a string.",
			"The manifest is created when it does not exist.",
		},
	}}
}

// Help returns the help text for the config set command
func (c *ConfigSetCommand) Help() string {
	return c.HelpFor(&ConfigFileOptions{})
}

// Synopsis returns a short description of the config set command
func (c *ConfigSetCommand) Synopsis() string {
	return "Change a tool setting"
}

// Run executes the config set command
func (c *ConfigSetCommand) Run(args []string) int {
	var opts ConfigFileOptions
	remaining, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}
	if len(remaining) != 2 {
		return c.Errorf("expected KEY and VALUE")
	}

	provider, err := toolconfig.Load(opts.File)
	if errors.Is(err, os.ErrNotExist) {
		provider, err = toolconfig.New(), nil
	}
	if err != nil {
		return c.Errorf("%v", err)
	}

	if err := provider.Set(remaining[0], toolconfig.ParseValue(remaining[1])); err != nil {
		return c.Errorf("%v", err)
	}
	if err := provider.Save(opts.File); err != nil {
		return c.Errorf("%v", err)
	}
	return 0
}

// ConfigListCommand prints every key under a prefix
type ConfigListCommand struct {
	BaseCommand
}

func newConfigListCommand() *ConfigListCommand {
	return &ConfigListCommand{BaseCommand{
		Name:        "config list",
		Description: "Print every key under PREFIX with its value.",
		Usage:       "[OPTIONS] [PREFIX]",
		Examples: []Example{
			{Command: "devtask config list", Description: "Everything"},
			{Command: "devtask config list tool.black", Description: "One tool"},
		},
	}}
}

// Help returns the help text for the config list command
func (c *ConfigListCommand) Help() string {
	return c.HelpFor(&ConfigFileOptions{})
}

// Synopsis returns a short description of the config list command
func (c *ConfigListCommand) Synopsis() string {
	return "List tool settings"
}

// Run executes the config list command
func (c *ConfigListCommand) Run(args []string) int {
	var opts ConfigFileOptions
	remaining, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}
	if len(remaining) > 1 {
		return c.Errorf("expected at most one PREFIX")
	}

	provider, err := toolconfig.Load(opts.File)
	if err != nil {
		return c.Errorf("%v", err)
	}

	prefix := ""
	if len(remaining) == 1 {
		prefix = remaining[0]
	}
	keys, err := provider.Keys(prefix)
	if err != nil {
		return c.Errorf("%v", err)
	}

	for _, key := range keys {
		value, err := provider.Get(key)
		if err != nil {
			return c.Errorf("%v", err)
		}
		c.Printf("%s = %s\n", key, toolconfig.FormatValue(value))
	}
	return 0
}

// ConfigCommandFactory creates the parent config command
func ConfigCommandFactory() (cli.Command, error) {
	return &ConfigCommand{}, nil
}

// ConfigGetCommandFactory creates a new config get command instance
func ConfigGetCommandFactory() (cli.Command, error) {
	return newConfigGetCommand(), nil
}

// ConfigSetCommandFactory creates a new config set command instance
func ConfigSetCommandFactory() (cli.Command, error) {
	return newConfigSetCommand(), nil
}

// ConfigListCommandFactory creates a new config list command instance
func ConfigListCommandFactory() (cli.Command, error) {
	return newConfigListCommand(), nil
}
