package commands

import (
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/blairham/devtask/pkg/tasks"
)

// HelpFormatter lays out command help: a description, then example and
// placeholder tables with their comments lined up, then notes, then options.
type HelpFormatter struct {
	Description  string
	Examples     []Example
	Placeholders []Placeholder
	Notes        []string
}

// Example represents a command example
type Example struct {
	Command     string
	Description string
}

// Placeholder documents a token that task commands may contain
type Placeholder struct {
	Token   string
	Meaning string
}

// TaskPlaceholders lists the tokens expanded in task command lines
var TaskPlaceholders = []Placeholder{
	{Token: tasks.ArgsPlaceholder, Meaning: "arguments given after the task name, each shell-quoted"},
	{Token: tasks.FilesPlaceholder, Meaning: "files matching the task's files pattern, shell-quoted; the line is skipped when none match"},
}

// FormatHelp generates help text for a command
func (h *HelpFormatter) FormatHelp(parser *flags.Parser) string {
	var b strings.Builder

	if h.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", h.Description)
	}

	examples := make([][2]string, len(h.Examples))
	for i, ex := range h.Examples {
		examples[i] = [2]string{ex.Command, ex.Description}
	}
	writeTable(&b, "Examples", examples, "# ")

	placeholders := make([][2]string, len(h.Placeholders))
	for i, ph := range h.Placeholders {
		placeholders[i] = [2]string{ph.Token, ph.Meaning}
	}
	writeTable(&b, "Placeholders", placeholders, "")

	if len(h.Notes) > 0 {
		b.WriteString("Notes:\n")
		for _, note := range h.Notes {
			fmt.Fprintf(&b, "  %s\n", note)
		}
		b.WriteString("\n")
	}

	parser.WriteHelp(&b)
	return b.String()
}

// writeTable prints rows as two columns, padding the first to its widest
// entry. Rows without a second column are printed bare.
func writeTable(b *strings.Builder, title string, rows [][2]string, lead string) {
	if len(rows) == 0 {
		return
	}

	width := 0
	for _, row := range rows {
		if row[1] != "" {
			width = max(width, len(row[0]))
		}
	}

	fmt.Fprintf(b, "%s:\n", title)
	for _, row := range rows {
		if row[1] == "" {
			fmt.Fprintf(b, "  %s\n", row[0])
			continue
		}
		fmt.Fprintf(b, "  %-*s  %s%s\n", width, row[0], lead, row[1])
	}
	b.WriteString("\n")
}

// CommonExamples provides common examples that many commands use
var CommonExamples = struct {
	Verbose  Example
	Tasks    Example
	DryRun   Example
	AllFiles Example
}{
	Verbose:  Example{Command: "--verbose", Description: "Show detailed output"},
	Tasks:    Example{Command: "--tasks ci.yaml", Description: "Use a custom task file"},
	DryRun:   Example{Command: "--dry-run", Description: "Print commands instead of running them"},
	AllFiles: Example{Command: "--all-files", Description: "Run on all files"},
}
