package commands

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/git"
	"github.com/blairham/devtask/pkg/hook/builtin"
	hookcmd "github.com/blairham/devtask/pkg/hook/commands"
)

// DoctorCommand checks that the tools the hook pipeline and tasks rely on
// are available
type DoctorCommand struct {
	GitRepositoryCommand
}

// DoctorOptions holds command-line options for the doctor command
type DoctorOptions struct {
	Config  string `short:"c" long:"config"  description:"Path to the hook config (default: hook-config setting)"`
	Verbose bool   `short:"v" long:"verbose" description:"Show every check, not only problems"`
}

// doctorReport collects findings; problems fail the command, warnings do not
type doctorReport struct {
	problems []string
	warnings []string
	passed   []string
}

func (r *doctorReport) problem(format string, args ...any) {
	r.problems = append(r.problems, fmt.Sprintf(format, args...))
}

func (r *doctorReport) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *doctorReport) ok(format string, args ...any) {
	r.passed = append(r.passed, fmt.Sprintf(format, args...))
}

func newDoctorCommand() *DoctorCommand {
	return &DoctorCommand{GitRepositoryCommand{BaseCommand{
		Name:        "doctor",
		Description: "Check that hook executables, hook scripts and the task file are in place.",
		Examples: []Example{
			{Command: "devtask doctor", Description: "Report problems"},
			{Command: "devtask doctor " + CommonExamples.Verbose.Command, Description: CommonExamples.Verbose.Description},
		},
		Notes: []string{
			"Exit codes:",
			"  0: no problems found (warnings may be present)",
			"  1: problems found",
		},
	}}}
}

// Help returns the help text for the doctor command
func (c *DoctorCommand) Help() string {
	return c.HelpFor(&DoctorOptions{})
}

// Synopsis returns a short description of the doctor command
func (c *DoctorCommand) Synopsis() string {
	return "Check environment health"
}

// Run executes the doctor command
func (c *DoctorCommand) Run(args []string) int {
	var opts DoctorOptions
	if _, code, ok := c.parse(&opts, args); !ok {
		return code
	}

	report := &doctorReport{}

	settings, _, err := c.LoadSettings()
	if err != nil {
		report.problem("pyproject.toml: %v", err)
	}

	if _, err := c.LoadTaskFile("", settings); err != nil {
		report.warn("task file: %v", err)
	} else {
		report.ok("task file loads")
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		report.problem("%v", err)
	}

	configPath := opts.Config
	if configPath == "" {
		configPath = settings.HookConfig
	}
	root := "."
	if repo != nil {
		root = repo.Root
		c.checkHookScripts(repo, report)
	}
	c.checkHookConfig(configPath, root, report)

	return c.printReport(report, opts.Verbose)
}

// checkHookConfig verifies every configured hook can be started
func (c *DoctorCommand) checkHookConfig(path, root string, report *doctorReport) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		report.warn("no hook config at %s", path)
		return
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		report.problem("hook config: %v", err)
		return
	}

	builder := hookcmd.NewBuilder(root)
	for _, repo := range cfg.Repos {
		for _, hook := range repo.Hooks {
			if repo.IsBuiltin() || hook.Language == config.LanguageBuiltin {
				if _, ok := builtin.Lookup(hook.ID); !ok {
					report.problem("hook %s: no builtin with that id", hook.ID)
				} else {
					report.ok("hook %s: builtin", hook.ID)
				}
				continue
			}

			if err := checkExecutable(builder, hook); err != nil {
				report.problem("hook %s: %v", hook.ID, err)
				continue
			}
			report.ok("hook %s: %s", hook.ID, hook.Entry)
		}
	}
}

func checkExecutable(builder *hookcmd.Builder, hook config.Hook) error {
	cmd, err := builder.BuildCommand(hook, nil, nil)
	if err != nil {
		return err
	}
	if cmd.Err != nil {
		return cmd.Err
	}
	if filepath.IsAbs(cmd.Path) {
		if _, err := os.Stat(cmd.Path); err != nil {
			return fmt.Errorf("executable not found: %s", cmd.Path)
		}
	}
	return nil
}

// checkHookScripts reports installed hook scripts and whether they can reach devtask
func (c *DoctorCommand) checkHookScripts(repo *git.Repository, report *doctorReport) {
	installed := 0
	for _, hookType := range supportedHookTypes {
		if !repo.HasHook(hookType) {
			continue
		}
		script, err := repo.ReadHook(hookType)
		if err != nil {
			report.problem("%v", err)
			continue
		}
		if !strings.Contains(script, hookScriptMarker) {
			report.warn("%s hook was not installed by devtask", hookType)
			continue
		}
		report.ok("%s hook installed", hookType)
		installed++
	}

	if installed == 0 {
		report.warn("no git hooks installed (run 'devtask install')")
		return
	}
	if _, err := exec.LookPath("devtask"); err != nil {
		report.problem("hook scripts are installed but devtask is not on PATH")
	}
}

func (c *DoctorCommand) printReport(report *doctorReport, verbose bool) int {
	if verbose {
		for _, line := range report.passed {
			c.Printf("ok       %s\n", line)
		}
	}
	for _, line := range report.warnings {
		c.Printf("warning  %s\n", line)
	}
	for _, line := range report.problems {
		c.Printf("problem  %s\n", line)
	}

	if len(report.problems) > 0 {
		c.Printf("\n%d problem(s) found\n", len(report.problems))
		return 1
	}
	c.Printf("No problems found\n")
	return 0
}

// DoctorCommandFactory creates a new doctor command instance
func DoctorCommandFactory() (cli.Command, error) {
	return newDoctorCommand(), nil
}
