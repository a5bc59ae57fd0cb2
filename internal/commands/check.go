package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mitchellh/cli"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/git"
	"github.com/blairham/devtask/pkg/hook"
	"github.com/blairham/devtask/pkg/hook/execution"
	"github.com/blairham/devtask/pkg/hook/formatting"
)

// CheckCommand runs the commit-time hook pipeline
type CheckCommand struct {
	GitRepositoryCommand
}

// CheckOptions holds command-line options for the check command
type CheckOptions struct {
	CommonOptions
	Config    string        `long:"config"     description:"Path to the hook config (default: hook-config setting)" short:"c"`
	HookStage string        `long:"hook-stage" description:"The stage during which the hook is fired"                         default:"pre-commit"`
	Files     []string      `long:"files"      description:"Specific filenames to run hooks on"`
	Timeout   time.Duration `long:"timeout"    description:"Per-hook execution timeout, e.g. 30s (default: none)"`
	AllFiles  bool          `long:"all-files"  description:"Run on all files in the repository"                   short:"a"`
}

func newCheckCommand() *CheckCommand {
	return &CheckCommand{GitRepositoryCommand{BaseCommand{
		Name:        "check",
		Description: "Run the hook pipeline against staged files, or all files with --all-files.",
		Usage:       "[OPTIONS] [HOOK_ID...]",
		Examples: []Example{
			{Command: "devtask check", Description: "Check staged files"},
			{Command: "devtask check " + CommonExamples.AllFiles.Command, Description: CommonExamples.AllFiles.Description},
			{Command: "devtask check black --files day01.py", Description: "Run one hook on one file"},
			{Command: "SKIP=pylint devtask check", Description: "Skip hooks by id"},
		},
		Notes: []string{
			"Hooks run one at a time in declared order.",
			"Unless fail_fast is false, hooks after the first failure are not run.",
			"The exit status is 0 only when every hook passed or was skipped.",
		},
	}}}
}

// Help returns the help text for the check command
func (c *CheckCommand) Help() string {
	return c.HelpFor(&CheckOptions{})
}

// Synopsis returns a short description of the check command
func (c *CheckCommand) Synopsis() string {
	return "Run the commit-time hook pipeline"
}

// Run executes the check command
func (c *CheckCommand) Run(args []string) int {
	var opts CheckOptions
	hookIDs, code, ok := c.parse(&opts, args)
	if !ok {
		return code
	}

	if opts.AllFiles && len(opts.Files) > 0 {
		return c.Errorf("--all-files and --files are mutually exclusive")
	}

	settings, _, err := c.LoadSettings()
	if err != nil {
		return c.Errorf("%v", err)
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		return c.Errorf("%v", err)
	}

	configPath := opts.Config
	if configPath == "" {
		configPath = settings.HookConfig
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.Errorf("no hook config found at %s (try 'devtask sample-config --kind hooks')", configPath)
		}
		return c.Errorf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return c.Errorf("invalid hook config: %v", err)
	}

	files, added, err := c.candidateFiles(repo, opts)
	if err != nil {
		return c.Errorf("%v", err)
	}

	execCtx := &execution.Context{
		Config:      cfg,
		Environment: map[string]string{"DEVTASK_HOOK_STAGE": opts.HookStage},
		Output:      c.output(),
		RepoRoot:    repo.Root,
		HookStage:   opts.HookStage,
		Color:       colorMode(opts.Color, settings),
		HookIDs:     hookIDs,
		Skip:        hook.ParseSkip(os.Getenv("SKIP")),
		Files:       files,
		AddedFiles:  added,
		Timeout:     opts.Timeout,
		AllFiles:    opts.AllFiles,
		Verbose:     opts.Verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := hook.NewOrchestrator(execCtx).RunHooks(ctx)
	formatter := formatting.NewFormatter(c.output(), execCtx.Color, opts.Verbose)
	formatter.PrintResults(results)
	if err != nil {
		return c.Errorf("%v", err)
	}

	if opts.Verbose {
		passed, failed, skipped, notRun := execution.Counts(results)
		c.Printf("\n%d passed, %d failed, %d skipped, %d not run\n", passed, failed, skipped, notRun)
	}

	if !execution.Passed(results) {
		return 1
	}
	return 0
}

// candidateFiles returns the files the pipeline considers and the subset
// newly added to the index
func (c *CheckCommand) candidateFiles(repo *git.Repository, opts CheckOptions) ([]string, []string, error) {
	start := time.Now()
	defer execution.LogTiming("collect candidate files", start)

	if !opts.AllFiles && len(opts.Files) == 0 && repo.HasUnmergedFiles() {
		return nil, nil, errors.New("unmerged files, resolve before committing")
	}

	added, err := repo.GetAddedFiles()
	if err != nil {
		return nil, nil, err
	}

	switch {
	case len(opts.Files) > 0:
		return opts.Files, added, nil
	case opts.AllFiles:
		files, err := repo.GetAllFiles()
		return files, added, err
	default:
		files, err := repo.GetStagedFiles()
		return files, added, err
	}
}

// CheckCommandFactory creates a new check command instance
func CheckCommandFactory() (cli.Command, error) {
	return newCheckCommand(), nil
}
