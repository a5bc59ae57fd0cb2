package config

import "strings"

// PreCommitHooksRepo is the upstream home of the hygiene hooks devtask runs in-process
const PreCommitHooksRepo = "https://github.com/pre-commit/pre-commit-hooks"

// Hook languages devtask can execute
const (
	LanguageBuiltin = "builtin"
	LanguageSystem  = "system"
	LanguageScript  = "script"
	LanguageFail    = "fail"
)

// WellKnownRepositories contains hook definitions for common repositories.
// Nothing is cloned: hygiene hooks run in-process and tool hooks run the
// tool found on PATH.
var WellKnownRepositories = map[string]map[string]Hook{
	PreCommitHooksRepo: {
		"trailing-whitespace": {
			ID:       "trailing-whitespace",
			Name:     "Trim Trailing Whitespace",
			Entry:    "trailing-whitespace",
			Language: LanguageBuiltin,
			Types:    []string{"text"},
		},
		"end-of-file-fixer": {
			ID:       "end-of-file-fixer",
			Name:     "Fix End of Files",
			Entry:    "end-of-file-fixer",
			Language: LanguageBuiltin,
			Types:    []string{"text"},
		},
		"check-yaml": {
			ID:       "check-yaml",
			Name:     "Check Yaml",
			Entry:    "check-yaml",
			Language: LanguageBuiltin,
			Types:    []string{"yaml"},
		},
		"check-toml": {
			ID:       "check-toml",
			Name:     "Check Toml",
			Entry:    "check-toml",
			Language: LanguageBuiltin,
			Types:    []string{"toml"},
		},
		"check-added-large-files": {
			ID:       "check-added-large-files",
			Name:     "Check for added large files",
			Entry:    "check-added-large-files",
			Language: LanguageBuiltin,
		},
	},
	"https://github.com/psf/black": {
		"black": {
			ID:       "black",
			Name:     "black",
			Entry:    "black",
			Language: LanguageSystem,
			TypesOr:  []string{"python", "pyi"},
		},
	},
	"https://github.com/pycqa/pylint": {
		"pylint": {
			ID:       "pylint",
			Name:     "pylint",
			Entry:    "pylint",
			Language: LanguageSystem,
			Types:    []string{"python"},
		},
	},
	"https://github.com/pycqa/pydocstyle": {
		"pydocstyle": {
			ID:       "pydocstyle",
			Name:     "pydocstyle",
			Entry:    "pydocstyle",
			Language: LanguageSystem,
			Types:    []string{"python"},
		},
	},
	"https://github.com/pycqa/flake8": {
		"flake8": {
			ID:       "flake8",
			Name:     "flake8",
			Entry:    "flake8",
			Language: LanguageSystem,
			Types:    []string{"python"},
		},
	},
	"https://github.com/pycqa/isort": {
		"isort": {
			ID:       "isort",
			Name:     "isort (python)",
			Entry:    "isort",
			Language: LanguageSystem,
			Types:    []string{"python"},
		},
	},
	"https://github.com/pre-commit/mirrors-mypy": {
		"mypy": {
			ID:       "mypy",
			Name:     "mypy",
			Entry:    "mypy",
			Language: LanguageSystem,
			Types:    []string{"python"},
		},
	},
	"https://github.com/dnephin/pre-commit-golang": {
		"go-fmt": {
			ID:       "go-fmt",
			Name:     "go-fmt",
			Entry:    "gofmt -l -w",
			Language: LanguageSystem,
			Types:    []string{"go"},
		},
		"go-vet": {
			ID:            "go-vet",
			Name:          "go-vet",
			Entry:         "go vet ./...",
			Language:      LanguageSystem,
			PassFilenames: boolPtr(false),
			Types:         []string{"go"},
		},
	},
}

// NormalizeRepoURL lower-cases a repository URL and drops a trailing slash or ".git"
func NormalizeRepoURL(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))
	url = strings.TrimSuffix(url, "/")
	return strings.TrimSuffix(url, ".git")
}

// GetWellKnownHook returns a hook definition from a well-known repository
func GetWellKnownHook(repoURL, hookID string) (Hook, bool) {
	if repoHooks, exists := WellKnownRepositories[NormalizeRepoURL(repoURL)]; exists {
		if hook, hookExists := repoHooks[hookID]; hookExists {
			return hook, true
		}
	}
	return Hook{}, false
}

// PopulateHookDefinitions populates missing hook information from well-known repositories
func (c *Config) PopulateHookDefinitions() {
	for i := range c.Repos {
		repo := &c.Repos[i]

		if repo.IsLocal() {
			continue
		}

		for j := range repo.Hooks {
			hook := &repo.Hooks[j]

			if repo.IsBuiltin() {
				c.populateHookFromWellKnown(hook, PreCommitHooksRepo)
				continue
			}

			// Only populate if language is not already set
			if hook.Language == "" {
				c.populateHookFromWellKnown(hook, repo.Repo)
			}
		}
	}
}

// populateHookFromWellKnown fills in hook details from well-known repositories
func (c *Config) populateHookFromWellKnown(hook *Hook, repoURL string) {
	wellKnownHook, exists := GetWellKnownHook(repoURL, hook.ID)
	if !exists {
		return
	}

	if hook.Name == "" {
		hook.Name = wellKnownHook.Name
	}
	if hook.Entry == "" {
		hook.Entry = wellKnownHook.Entry
	}
	if len(hook.Types) == 0 && len(hook.TypesOr) == 0 {
		hook.Types = wellKnownHook.Types
		hook.TypesOr = wellKnownHook.TypesOr
	}
	if hook.PassFilenames == nil {
		hook.PassFilenames = wellKnownHook.PassFilenames
	}
	hook.Language = wellKnownHook.Language
}
