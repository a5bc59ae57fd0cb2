// Package execution handles the core hook execution logic
package execution

import (
	"io"
	"time"

	"github.com/blairham/devtask/pkg/config"
	"github.com/blairham/devtask/pkg/logging"
)

var log = logging.NewLogger("hook")

// LogTiming logs the duration of a phase at debug level
func LogTiming(phase string, start time.Time) {
	log.WithField("elapsed", time.Since(start).String()).Debugf("[TIMING] %s", phase)
}

// DefaultStage is the stage hooks run in when none is requested
const DefaultStage = "pre-commit"

// Context holds context for hook execution
type Context struct {
	Config      *config.Config
	Environment map[string]string
	Output      io.Writer
	RepoRoot    string
	HookStage   string
	Color       string
	HookIDs     []string
	Skip        []string
	Files       []string
	AddedFiles  []string
	Timeout     time.Duration
	AllFiles    bool
	Verbose     bool
}

// SkipReasonNoFiles is shown for hooks that had nothing to check
const SkipReasonNoFiles = "(no files to check)"

// Result represents the result of hook execution
type Result struct {
	Output     string
	SkipReason string
	Error      string
	Files      []string
	Modified   []string
	Hook       config.Hook
	Duration   time.Duration
	ExitCode   int
	Success    bool
	Timeout    bool
	Skipped    bool
	NotRun     bool
}

// RunItem represents a hook to be executed with its repository context
type RunItem struct {
	Repo config.Repo
	Hook config.Hook
}

// SkipResult represents the result of checking if a hook should be skipped
type SkipResult struct {
	Result Result
	Skip   bool
}

// Passed reports whether every hook in results passed or was skipped
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Success {
			return false
		}
	}
	return true
}

// Counts tallies results by outcome
func Counts(results []Result) (passed, failed, skipped, notRun int) {
	for _, result := range results {
		switch {
		case result.NotRun:
			notRun++
		case result.Skipped:
			skipped++
		case result.Success:
			passed++
		default:
			failed++
		}
	}
	return passed, failed, skipped, notRun
}
