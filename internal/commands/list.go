package commands

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/pkg/hook/formatting"
)

// ListCommand prints the declared tasks
type ListCommand struct {
	BaseCommand
}

// ListOptions holds command-line options for the list command
type ListOptions struct {
	TaskFileOptions
	Color string `long:"color" description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never"`
	Names bool   `long:"names" description:"Print only task names, one per line"`
}

func newListCommand() *ListCommand {
	return &ListCommand{BaseCommand: BaseCommand{
		Name:        "list",
		Description: "List the tasks in the task file with their descriptions.",
		Examples: []Example{
			{Command: "devtask list", Description: "Show all tasks"},
			{Command: "devtask list --names", Description: "Names only, for scripts and completion"},
		},
	}}
}

// Help returns the help text for the list command
func (c *ListCommand) Help() string {
	return c.HelpFor(&ListOptions{})
}

// Synopsis returns a short description of the list command
func (c *ListCommand) Synopsis() string {
	return "List available tasks"
}

// Run executes the list command
func (c *ListCommand) Run(args []string) int {
	var opts ListOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	settings, _, err := c.LoadSettings()
	if err != nil {
		return c.Errorf("%v", err)
	}

	file, err := c.LoadTaskFile(opts.Tasks, settings)
	if err != nil {
		return c.Errorf("%v", err)
	}

	if opts.Names {
		for _, name := range file.Names() {
			c.Printf("%s\n", name)
		}
		return 0
	}

	useColor := formatting.ShouldUseColor(colorMode(opts.Color, settings), c.output())
	table := newTaskTable(useColor)
	for _, task := range file.Tasks {
		table.Row(task.Name, task.Comment, strconv.Itoa(len(task.Commands)))
	}

	c.Printf("%s\n", table.Render())
	return 0
}

// newTaskTable builds the table used by list. Colors are only applied when
// useColor is set so that piped output stays plain.
func newTaskTable(useColor bool) *ltable.Table {
	header := lipgloss.NewStyle().Bold(useColor).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	name := cell
	border := lipgloss.NewStyle()
	if useColor {
		header = header.Foreground(lipgloss.Color("12"))
		name = name.Foreground(lipgloss.Color("10"))
		border = border.Foreground(lipgloss.Color("8"))
	}

	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		Headers("TASK", "DESCRIPTION", "STEPS").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return header
			case col == 0:
				return name
			default:
				return cell
			}
		})
}

// ListCommandFactory creates a new list command instance
func ListCommandFactory() (cli.Command, error) {
	return newListCommand(), nil
}
