package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/blairham/devtask/pkg/git"
	"github.com/blairham/devtask/pkg/logging"
	"github.com/blairham/devtask/pkg/tasks"
	"github.com/blairham/devtask/pkg/toolconfig"
)

// errHelpShown is returned by ParseArgsWithHelp after the help text was printed
var errHelpShown = errors.New("help shown")

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Out         io.Writer
	Name        string
	Description string
	Usage       string
	Examples    []Example
	Notes       []string
	// Placeholders are listed in help for commands that run task lines
	Placeholders []Placeholder
	// Options are extra go-flags parser options, e.g. flags.PassAfterNonOption
	Options flags.Options
}

// CommonOptions defines options shared across multiple commands
type CommonOptions struct {
	Color   string `long:"color"   description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"          short:"v"`
}

// TaskFileOptions selects the task file
type TaskFileOptions struct {
	Tasks string `long:"tasks" description:"Path to the task file (default: tasks.yaml, then justfile)" short:"f"`
}

// GitRepositoryCommand provides common git repository functionality
type GitRepositoryCommand struct {
	BaseCommand
}

// RequireGitRepository ensures we're in a git repository and returns it
func (grc *GitRepositoryCommand) RequireGitRepository() (*git.Repository, error) {
	repo, err := git.NewRepository("")
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	return repo, nil
}

func (bc *BaseCommand) output() io.Writer {
	if bc.Out == nil {
		return os.Stdout
	}
	return bc.Out
}

// Printf writes user-facing output
func (bc *BaseCommand) Printf(format string, args ...any) {
	fmt.Fprintf(bc.output(), format, args...)
}

// Errorf reports an error in the standard form and returns exit status 1
func (bc *BaseCommand) Errorf(format string, args ...any) int {
	fmt.Fprintf(bc.output(), "Error: "+format+"\n", args...)
	return 1
}

func (bc *BaseCommand) newParser(opts any) *flags.Parser {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash|bc.Options)
	parser.Name = "devtask " + bc.Name
	parser.Usage = bc.Usage
	if parser.Usage == "" {
		parser.Usage = OptionsUsage
	}
	return parser
}

// ParseArgsWithHelp parses arguments and handles help display. errHelpShown
// means the caller should exit 0.
func (bc *BaseCommand) ParseArgsWithHelp(opts any, args []string) ([]string, error) {
	parser := bc.newParser(opts)

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprint(bc.output(), bc.GenerateHelp(parser))
			return nil, errHelpShown
		}
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}

	return remaining, nil
}

// parse wraps ParseArgsWithHelp with the exit-code convention shared by all
// commands: ok is false when the command should return code immediately.
func (bc *BaseCommand) parse(opts any, args []string) (remaining []string, code int, ok bool) {
	remaining, err := bc.ParseArgsWithHelp(opts, args)
	if errors.Is(err, errHelpShown) {
		return nil, 0, false
	}
	if err != nil {
		return nil, bc.Errorf("%v", err), false
	}
	return remaining, 0, true
}

// GenerateHelp creates standardized help output
func (bc *BaseCommand) GenerateHelp(parser *flags.Parser) string {
	formatter := &HelpFormatter{
		Description:  bc.Description,
		Examples:     bc.Examples,
		Placeholders: bc.Placeholders,
		Notes:        bc.Notes,
	}
	return formatter.FormatHelp(parser)
}

// HelpFor renders help for a fresh options value without parsing anything
func (bc *BaseCommand) HelpFor(opts any) string {
	return bc.GenerateHelp(bc.newParser(opts))
}

// LoadSettings reads [tool.devtask] from pyproject.toml in the working
// directory and applies its log level.
func (bc *BaseCommand) LoadSettings() (toolconfig.Settings, *toolconfig.Provider, error) {
	settings, provider, err := toolconfig.LoadSettings(toolconfig.DefaultFileName)
	logging.Configure(settings.LogLevel)
	return settings, provider, err
}

// ResolveTaskFile picks the task file: the flag, then the configured
// task-file setting, then the first well-known file in the working directory.
func ResolveTaskFile(flagPath string, settings toolconfig.Settings) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if settings.TaskFile != "" {
		return settings.TaskFile, nil
	}
	return tasks.Discover(".")
}

// LoadTaskFile resolves and loads the task file
func (bc *BaseCommand) LoadTaskFile(flagPath string, settings toolconfig.Settings) (*tasks.File, error) {
	path, err := ResolveTaskFile(flagPath, settings)
	if err != nil {
		return nil, err
	}
	return tasks.Load(path)
}

// colorMode resolves the color flag against the configured setting
func colorMode(flagValue string, settings toolconfig.Settings) string {
	if flagValue != "" {
		return flagValue
	}
	if settings.Color != "" {
		return settings.Color
	}
	return "auto"
}

// HookTypeOptions provides common hook type functionality
type HookTypeOptions struct {
	HookTypes []string `short:"t" long:"hook-type" description:"Hook type to install (can be specified multiple times)"`
}

// GetDefaultHookTypes returns default hook types if none specified
func (hto *HookTypeOptions) GetDefaultHookTypes(defaultType string) []string {
	if len(hto.HookTypes) == 0 {
		return []string{defaultType}
	}
	return hto.HookTypes
}

// ValidateHookTypes validates that all specified hook types are supported
func (hto *HookTypeOptions) ValidateHookTypes() error {
	for _, hookType := range hto.HookTypes {
		if !isSupportedHookType(hookType) {
			return fmt.Errorf("unsupported hook type: %s", hookType)
		}
	}
	return nil
}
