package git

import (
	"strings"
)

// keptGitVars survive NoGitEnv; everything else prefixed GIT_ is dropped
var keptGitVars = map[string]bool{
	"GIT_EXEC_PATH":   true,
	"GIT_SSH":         true,
	"GIT_SSH_COMMAND": true,
	"GIT_SSL_CAINFO":  true,
}

// NoGitEnv drops the GIT_* variables git exports to hook scripts.
// GIT_INDEX_FILE and GIT_DIR in particular make tools a hook spawns
// operate on the wrong repository state.
func NoGitEnv(env []string) []string {
	filtered := make([]string, 0, len(env))

	for _, envVar := range env {
		key, _, _ := strings.Cut(envVar, "=")
		if strings.HasPrefix(key, "GIT_") &&
			!keptGitVars[key] &&
			!strings.HasPrefix(key, "GIT_CONFIG_KEY_") &&
			!strings.HasPrefix(key, "GIT_CONFIG_VALUE_") {
			continue
		}
		filtered = append(filtered, envVar)
	}

	return filtered
}
