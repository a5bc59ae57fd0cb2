// Package main provides the devtask command-line tool: a task dispatcher,
// a pyproject.toml settings provider and a commit-time hook pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/internal/commands"
)

// Version information set at build time
var version = "dev"

func main() {
	c := cli.NewCLI("devtask", version)
	c.Args = os.Args[1:]
	c.HelpFunc = commands.HelpFunc
	c.Commands = commands.Commands()

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}
