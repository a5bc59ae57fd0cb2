package commands

import "slices"

// Git hook type constants
const (
	hookTypePreCommit      = "pre-commit"
	hookTypePreMergeCommit = "pre-merge-commit"
)

// supportedHookTypes are the git hooks devtask can be installed as. Both take
// no arguments from git and check what is staged in the index.
var supportedHookTypes = []string{
	hookTypePreCommit,
	hookTypePreMergeCommit,
}

func isSupportedHookType(hookType string) bool {
	return slices.Contains(supportedHookTypes, hookType)
}

// Common constants used across command implementations
const (
	// Command usage patterns
	OptionsUsage = "[OPTIONS]"

	// hookScriptMarker identifies hook scripts written by devtask install
	hookScriptMarker = "# Generated by devtask"
)
