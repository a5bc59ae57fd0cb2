// Package config provides parsing and validation of the commit-time hook
// pipeline declared in .pre-commit-config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

// Repository kinds that are not fetched from anywhere
const (
	LocalRepo   = "local"
	BuiltinRepo = "builtin"
)

// ConfigFileName is the default name for the hook pipeline configuration file
const ConfigFileName = ".pre-commit-config.yaml"

// ErrEmptyConfig is returned for a config file with no content
var ErrEmptyConfig = errors.New("config file is empty")

// Config represents the .pre-commit-config.yaml structure
type Config struct {
	FailFast      *bool    `yaml:"fail_fast,omitempty"`
	Files         string   `yaml:"files,omitempty"`
	ExcludeRegex  string   `yaml:"exclude,omitempty"`
	Repos         []Repo   `yaml:"repos"`
	DefaultStages []string `yaml:"default_stages,omitempty"`
}

// Repo is one (repository, revision, hooks) entry of the pipeline
type Repo struct {
	Repo  string `yaml:"repo"`
	Rev   string `yaml:"rev,omitempty"`
	Hooks []Hook `yaml:"hooks"`
}

// Hook is a single check within a repo entry
type Hook struct {
	PassFilenames *bool    `yaml:"pass_filenames,omitempty"`
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name,omitempty"`
	Entry         string   `yaml:"entry,omitempty"`
	Language      string   `yaml:"language,omitempty"`
	Files         string   `yaml:"files,omitempty"`
	ExcludeRegex  string   `yaml:"exclude,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	Types         []string `yaml:"types,omitempty"`
	TypesOr       []string `yaml:"types_or,omitempty"`
	ExcludeTypes  []string `yaml:"exclude_types,omitempty"`
	Args          []string `yaml:"args,omitempty"`
	Stages        []string `yaml:"stages,omitempty"`
	AlwaysRun     bool     `yaml:"always_run,omitempty"`
	Verbose       bool     `yaml:"verbose,omitempty"`
}

// DisplayName returns the hook's name, falling back to its id
func (h Hook) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// IsFailFast reports whether the pipeline stops at the first failing hook.
// Unset means true: a failing hook blocks the commit and nothing after it runs.
func (c *Config) IsFailFast() bool {
	return c.FailFast == nil || *c.FailFast
}

// LoadConfig loads the hook pipeline configuration from file
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = ConfigFileName
	}

	if !filepath.IsAbs(configPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		configPath = filepath.Join(cwd, configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return ParseConfig(data, configPath)
}

// ParseConfig decodes configuration bytes; source is only used in messages
func ParseConfig(data []byte, source string) (*Config, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyConfig, source)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", source, err)
	}

	return &config, nil
}

// Validate fills in well-known hook definitions and validates the configuration
func (c *Config) Validate() error {
	if len(c.Repos) == 0 {
		// An empty repositories list is valid - just means no hooks are configured
		return nil
	}

	c.PopulateHookDefinitions()

	if err := validatePatterns(c.Files, c.ExcludeRegex); err != nil {
		return err
	}

	for i, repo := range c.Repos {
		if repo.Repo == "" {
			return fmt.Errorf("repo %d: repository URL is required", i)
		}
		if repo.Rev == "" && !repo.IsLocal() && !repo.IsBuiltin() {
			return fmt.Errorf("repo %d: revision is required", i)
		}
		if len(repo.Hooks) == 0 {
			return fmt.Errorf("repo %d: no hooks configured", i)
		}

		for j, hook := range repo.Hooks {
			if err := c.validateHook(repo, hook); err != nil {
				return fmt.Errorf("repo %d, hook %d: %w", i, j, err)
			}
		}
	}

	return nil
}

func (c *Config) validateHook(repo Repo, hook Hook) error {
	if hook.ID == "" {
		return errors.New("hook ID is required")
	}

	switch {
	case repo.IsLocal():
		if hook.Entry == "" {
			return fmt.Errorf("local hook %s: entry is required", hook.ID)
		}
		if hook.Language == "" {
			return fmt.Errorf("local hook %s: language is required", hook.ID)
		}
	case hook.Language == "":
		return fmt.Errorf("hook %s is not known for repository %s", hook.ID, repo.Repo)
	}

	return validatePatterns(hook.Files, hook.ExcludeRegex)
}

// validatePatterns checks files/exclude regexes; they use Python syntax
func validatePatterns(patterns ...string) error {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if _, err := regexp2.Compile(pattern, regexp2.None); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// IsLocal reports whether hooks of this repo are declared inline
func (r Repo) IsLocal() bool {
	return r.Repo == LocalRepo
}

// IsBuiltin reports whether hooks of this repo run in-process
func (r Repo) IsBuiltin() bool {
	return r.Repo == BuiltinRepo || r.Repo == "meta"
}

// DefaultConfig returns the pipeline a new repository starts with: hygiene
// fixers, formatting, tests and docstring checks, in that order
func DefaultConfig() *Config {
	return &Config{
		Repos: []Repo{
			{
				Repo: PreCommitHooksRepo,
				Rev:  "v4.0.1",
				Hooks: []Hook{
					{ID: "trailing-whitespace"},
					{ID: "end-of-file-fixer"},
					{ID: "check-yaml"},
					{ID: "check-added-large-files"},
				},
			},
			{
				Repo:  "https://github.com/psf/black",
				Rev:   "21.12b0",
				Hooks: []Hook{{ID: "black"}},
			},
			{
				Repo: LocalRepo,
				Hooks: []Hook{
					{
						ID:            "pytest",
						Name:          "pytest",
						Entry:         "pytest",
						Language:      "system",
						PassFilenames: boolPtr(false),
						AlwaysRun:     true,
					},
				},
			},
			{
				Repo:  "https://github.com/pycqa/pydocstyle",
				Rev:   "6.1.1",
				Hooks: []Hook{{ID: "pydocstyle"}},
			},
		},
	}
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

func boolPtr(b bool) *bool {
	return &b
}
