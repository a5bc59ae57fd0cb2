package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/cli"
	"gopkg.in/yaml.v3"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/hook"
)

// MigrateConfigCommand rewrites an old-style hook config in the current format
type MigrateConfigCommand struct {
	BaseCommand
}

// MigrateConfigOptions holds command-line options for the migrate-config command
type MigrateConfigOptions struct {
	Config string `short:"c" long:"config"  description:"Path to the hook config (default: hook-config setting)"`
	DryRun bool   `short:"n" long:"dry-run" description:"Print the migrated config instead of writing it"`
}

func newMigrateConfigCommand() *MigrateConfigCommand {
	return &MigrateConfigCommand{BaseCommand{
		Name:        "migrate-config",
		Description: "Migrate a hook config to the current format.",
		Examples: []Example{
			{Command: "devtask migrate-config", Description: "Migrate in place"},
			{Command: "devtask migrate-config " + CommonExamples.DryRun.Command, Description: CommonExamples.DryRun.Description},
		},
		Notes: []string{
			"A top-level list of repos is wrapped in a 'repos:' map.",
			"Legacy stage names (commit, push, merge-commit) are renamed after their git hooks.",
		},
	}}
}

// Help returns the help text for the migrate-config command
func (c *MigrateConfigCommand) Help() string {
	return c.HelpFor(&MigrateConfigOptions{})
}

// Synopsis returns a short description of the migrate-config command
func (c *MigrateConfigCommand) Synopsis() string {
	return "Migrate the hook config to the current format"
}

// Run executes the migrate-config command
func (c *MigrateConfigCommand) Run(args []string) int {
	var opts MigrateConfigOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	settings, _, err := c.LoadSettings()
	if err != nil {
		return c.Errorf("%v", err)
	}
	path := opts.Config
	if path == "" {
		path = settings.HookConfig
	}

	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the user
	if err != nil {
		return c.Errorf("reading config file: %v", err)
	}

	migrated, changed, err := migrateHookConfig(content)
	if err != nil {
		return c.Errorf("%s: %v", path, err)
	}

	if opts.DryRun {
		c.Printf("%s", migrated)
		return 0
	}
	if !changed {
		c.Printf("No migration needed\n")
		return 0
	}

	if err := os.WriteFile(path, migrated, 0o600); err != nil {
		return c.Errorf("writing migrated config: %v", err)
	}
	c.Printf("Configuration has been migrated.\n")
	return 0
}

// migrateHookConfig rewrites the config document through yaml.Node so that
// comments and key order survive. changed is false when nothing needed doing.
func migrateHookConfig(content []byte) (migrated []byte, changed bool, err error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, false, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, false, config.ErrEmptyConfig
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		root = &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!!map",
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: "repos"},
				root,
			},
		}
		doc.Content[0] = root
		changed = true
	}
	if root.Kind != yaml.MappingNode {
		return nil, false, errors.New("expected a map or a list of repos at the top level")
	}

	if renameLegacyStages(root) {
		changed = true
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, false, fmt.Errorf("encoding migrated config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), changed, nil
}

// renameLegacyStages rewrites stages and default_stages lists anywhere under node
func renameLegacyStages(node *yaml.Node) bool {
	changed := false
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if (key.Value == "stages" || key.Value == "default_stages") && value.Kind == yaml.SequenceNode {
				for _, stage := range value.Content {
					if renamed := hook.NormalizeStage(stage.Value); renamed != stage.Value {
						stage.Value = renamed
						changed = true
					}
				}
				continue
			}
			if renameLegacyStages(value) {
				changed = true
			}
		}
	case yaml.SequenceNode:
		for _, child := range node.Content {
			if renameLegacyStages(child) {
				changed = true
			}
		}
	}
	return changed
}

// MigrateConfigCommandFactory creates a new migrate-config command instance
func MigrateConfigCommandFactory() (cli.Command, error) {
	return newMigrateConfigCommand(), nil
}
