// Package hook runs the commit-time hook pipeline declared in .pre-commit-config.yaml.
package hook

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/hook/builtin"
	"github.com/blairham/devtask/pkg/hook/commands"
	"github.com/blairham/devtask/pkg/hook/execution"
	"github.com/blairham/devtask/pkg/hook/matching"
	"github.com/blairham/devtask/pkg/logging"
)

// ErrNoConfig is returned when the orchestrator has no pipeline to run
var ErrNoConfig = errors.New("no hook configuration")

// SkipReasonEnv is shown for hooks named in the SKIP environment variable
const SkipReasonEnv = "(skipped by SKIP)"

// legacyStages maps the stage names of older configs to git hook names
var legacyStages = map[string]string{
	"commit":       "pre-commit",
	"push":         "pre-push",
	"merge-commit": "pre-merge-commit",
}

// Orchestrator coordinates hook execution
type Orchestrator struct {
	ctx      *execution.Context
	executor *execution.Executor
	matcher  *matching.Matcher
	builder  *commands.Builder
	log      *logrus.Entry
}

// NewOrchestrator creates a new hook orchestrator
func NewOrchestrator(ctx *execution.Context) *Orchestrator {
	return &Orchestrator{
		ctx:      ctx,
		executor: execution.NewExecutor(ctx),
		matcher:  matching.NewMatcher(ctx.RepoRoot),
		builder:  commands.NewBuilder(ctx.RepoRoot),
		log:      logging.NewLogger("hook"),
	}
}

// RunHooks selects the hooks for the requested stage and runs them one at a
// time in declared order. With fail-fast (the default) every hook after the
// first failure is recorded as not run.
func (o *Orchestrator) RunHooks(ctx context.Context) ([]execution.Result, error) {
	overallStart := time.Now()
	defer execution.LogTiming("RunHooks overall", overallStart)

	if o.ctx.Config == nil {
		return nil, ErrNoConfig
	}

	files, err := o.matcher.FilterByPatterns(o.ctx.Files, o.ctx.Config.Files, o.ctx.Config.ExcludeRegex)
	if err != nil {
		return nil, fmt.Errorf("top-level files/exclude: %w", err)
	}

	hooksToRun := o.collectHooksToRun()
	o.log.WithFields(logrus.Fields{
		"stage": o.getHookStage(),
		"hooks": len(hooksToRun),
		"files": len(files),
	}).Debug("running hook pipeline")

	return o.runHooksSequential(ctx, hooksToRun, files)
}

// collectHooksToRun gathers all hooks that should be executed based on stage and filters
func (o *Orchestrator) collectHooksToRun() []execution.RunItem {
	collectStart := time.Now()
	defer execution.LogTiming("hook collection", collectStart)

	hookStage := o.getHookStage()
	var hooksToRun []execution.RunItem

	for _, repo := range o.ctx.Config.Repos {
		for _, hook := range repo.Hooks {
			if o.shouldRunHook(hook, hookStage) {
				hooksToRun = append(hooksToRun, execution.RunItem{Repo: repo, Hook: hook})
			}
		}
	}

	return hooksToRun
}

// getHookStage returns the hook stage to run, defaulting to "pre-commit"
func (o *Orchestrator) getHookStage() string {
	if o.ctx.HookStage == "" {
		return execution.DefaultStage
	}
	return NormalizeStage(o.ctx.HookStage)
}

// NormalizeStage maps legacy stage names such as "commit" to the git hook name
func NormalizeStage(stage string) string {
	if mapped, ok := legacyStages[stage]; ok {
		return mapped
	}
	return stage
}

// shouldRunHook determines if a hook should be executed based on stage and ID filters
func (o *Orchestrator) shouldRunHook(hook config.Hook, hookStage string) bool {
	if !o.shouldRunHookForStage(hook, hookStage) {
		return false
	}

	if len(o.ctx.HookIDs) > 0 && !slices.Contains(o.ctx.HookIDs, hook.ID) {
		return false
	}

	return true
}

// shouldRunHookForStage checks if a hook should run for the given stage. A
// hook without stages falls back to default_stages, and runs everywhere
// when neither is set.
func (o *Orchestrator) shouldRunHookForStage(hook config.Hook, stage string) bool {
	stages := hook.Stages
	if len(stages) == 0 {
		stages = o.ctx.Config.DefaultStages
	}
	if len(stages) == 0 {
		return true
	}

	return slices.ContainsFunc(stages, func(s string) bool {
		return NormalizeStage(s) == stage
	})
}

func (o *Orchestrator) isSkippedByEnv(hook config.Hook) bool {
	return slices.Contains(o.ctx.Skip, hook.ID)
}

func (o *Orchestrator) runHooksSequential(
	ctx context.Context,
	hooksToRun []execution.RunItem,
	files []string,
) ([]execution.Result, error) {
	results := make([]execution.Result, 0, len(hooksToRun))
	failFast := o.ctx.Config.IsFailFast()
	stopped := false

	for _, item := range hooksToRun {
		if stopped {
			results = append(results, execution.NotRunResult(item.Hook))
			continue
		}

		result, err := o.runHook(ctx, item, files)
		if err != nil {
			return results, fmt.Errorf("failed to run hook %s: %w", item.Hook.ID, err)
		}
		results = append(results, result)

		if !result.Success && failFast {
			o.log.WithField("hook", item.Hook.ID).Debug("stopping pipeline after failure")
			stopped = true
		}
	}

	return results, nil
}

// runHook executes a single hook against the pipeline's candidate files
func (o *Orchestrator) runHook(
	ctx context.Context,
	item execution.RunItem,
	candidates []string,
) (execution.Result, error) {
	start := time.Now()
	defer execution.LogTiming("runHook "+item.Hook.ID, start)

	hook := item.Hook
	result := execution.Result{Hook: hook}

	if o.isSkippedByEnv(hook) {
		result.Success = true
		result.Skipped = true
		result.SkipReason = SkipReasonEnv
		return result, nil
	}

	files, err := o.matcher.GetFilesForHook(hook, candidates)
	if err != nil {
		return result, err
	}
	result.Files = files

	if shouldSkip := o.shouldSkipHook(hook, files); shouldSkip.Skip {
		return shouldSkip.Result, nil
	}

	before := execution.TakeSnapshot(o.ctx.RepoRoot, candidates)

	if item.Repo.IsBuiltin() || hook.Language == config.LanguageBuiltin {
		if err := o.runBuiltin(ctx, &result, files, start); err != nil {
			return result, err
		}
	} else if err := o.runCommand(ctx, &result, files, start); err != nil {
		return result, err
	}

	o.executor.MarkModified(&result, before.Changed(execution.TakeSnapshot(o.ctx.RepoRoot, candidates)))

	o.log.WithFields(logrus.Fields{
		"hook":     hook.ID,
		"files":    len(files),
		"exitCode": result.ExitCode,
		"success":  result.Success,
		"modified": len(result.Modified),
	}).Debug("hook finished")

	return result, nil
}

func (o *Orchestrator) runBuiltin(
	ctx context.Context,
	result *execution.Result,
	files []string,
	start time.Time,
) error {
	output, code, err := builtin.Run(ctx, result.Hook.ID, builtin.Request{
		Root:       o.ctx.RepoRoot,
		Files:      files,
		AddedFiles: o.ctx.AddedFiles,
		Args:       result.Hook.Args,
	})
	if errors.Is(err, builtin.ErrUnknownHook) || errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		result.Error = err.Error()
		if code == 0 {
			code = 1
		}
	}

	o.executor.ProcessBuiltinResult(result, output, code, start)
	return nil
}

func (o *Orchestrator) runCommand(
	ctx context.Context,
	result *execution.Result,
	files []string,
	start time.Time,
) error {
	cmd, err := o.builder.BuildCommand(result.Hook, files, o.hookEnvironment())
	if err != nil {
		return fmt.Errorf("failed to build command: %w", err)
	}

	output, execErr := o.executor.ExecuteWithTimeout(ctx, cmd)
	if errors.Is(execErr, context.Canceled) {
		return execErr
	}

	o.executor.ProcessExecutionResult(result, output, execErr, start)
	return nil
}

func (o *Orchestrator) shouldSkipHook(hook config.Hook, files []string) execution.SkipResult {
	if len(files) == 0 && !hook.AlwaysRun {
		return execution.SkipResult{
			Skip: true,
			Result: execution.Result{
				Hook:       hook,
				Success:    true,
				Skipped:    true,
				SkipReason: execution.SkipReasonNoFiles,
			},
		}
	}
	return execution.SkipResult{Skip: false}
}

// hookEnvironment renders context environment variables in a stable order
func (o *Orchestrator) hookEnvironment() []string {
	env := []string{"PRE_COMMIT=1"}

	keys := make([]string, 0, len(o.ctx.Environment))
	for key := range o.ctx.Environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		env = append(env, key+"="+o.ctx.Environment[key])
	}
	return env
}

// ParseSkip splits the SKIP environment variable into hook ids
func ParseSkip(value string) []string {
	var ids []string
	for id := range strings.SplitSeq(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
