package commands

import (
	"fmt"

	"github.com/mitchellh/cli"
	"gopkg.in/yaml.v3"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/tasks"
	"github.com/blairham/devtask/pkg/toolconfig"
)

// Sample kinds
const (
	sampleKindTasks     = "tasks"
	sampleKindHooks     = "hooks"
	sampleKindPyproject = "pyproject"
)

// SampleConfigCommand prints starter configuration files
type SampleConfigCommand struct {
	BaseCommand
}

// SampleConfigOptions holds command-line options for the sample-config command
type SampleConfigOptions struct {
	Kind string `long:"kind" description:"Which file to print" choice:"tasks" choice:"hooks" choice:"pyproject" default:"hooks"`
}

func newSampleConfigCommand() *SampleConfigCommand {
	return &SampleConfigCommand{BaseCommand{
		Name:        "sample-config",
		Description: "Print a starter configuration file to stdout.",
		Examples: []Example{
			{Command: "devtask sample-config > .pre-commit-config.yaml", Description: "Hook pipeline"},
			{Command: "devtask sample-config --kind tasks > tasks.yaml", Description: "Task table"},
			{Command: "devtask sample-config --kind pyproject > pyproject.toml", Description: "Tool settings"},
		},
	}}
}

// Help returns the help text for the sample-config command
func (c *SampleConfigCommand) Help() string {
	return c.HelpFor(&SampleConfigOptions{})
}

// Synopsis returns a short description of the sample-config command
func (c *SampleConfigCommand) Synopsis() string {
	return "Print a sample configuration file"
}

// Run executes the sample-config command
func (c *SampleConfigCommand) Run(args []string) int {
	var opts SampleConfigOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	data, err := sampleConfig(opts.Kind)
	if err != nil {
		return c.Errorf("%v", err)
	}

	c.Printf("%s", data)
	return 0
}

func sampleConfig(kind string) ([]byte, error) {
	switch kind {
	case sampleKindTasks:
		data, err := yaml.Marshal(tasks.DefaultFile())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal task file: %w", err)
		}
		return data, nil
	case sampleKindHooks:
		return config.DefaultConfig().Marshal()
	case sampleKindPyproject:
		return toolconfig.SampleManifest().Marshal()
	default:
		return nil, fmt.Errorf("unknown sample kind %q", kind)
	}
}

// SampleConfigCommandFactory creates a new sample-config command instance
func SampleConfigCommandFactory() (cli.Command, error) {
	return newSampleConfigCommand(), nil
}
