// Package matching handles filtering and type matching for hooks
package matching

import (
	"fmt"
	"sync"

	"github.com/dlclark/regexp2"

	"github.com/blairham/devtask/pkg/config"
)

// Matcher handles file filtering and type matching. Patterns use Python
// regular expression syntax and are searched for anywhere in the path.
type Matcher struct {
	types    *TypeRegistry
	patterns map[string]*regexp2.Regexp
	mu       sync.Mutex
}

// NewMatcher creates a new file matcher; root is used to sniff file content
// for the text and binary types
func NewMatcher(root string) *Matcher {
	return &Matcher{
		types:    NewTypeRegistry(root),
		patterns: make(map[string]*regexp2.Regexp),
	}
}

// CompilePattern checks that pattern is a valid hook regex
func CompilePattern(pattern string) error {
	_, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return nil
}

func (m *Matcher) compile(pattern string) (*regexp2.Regexp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.patterns[pattern]; ok {
		return re, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	m.patterns[pattern] = re
	return re, nil
}

func (m *Matcher) search(pattern, file string) (bool, error) {
	re, err := m.compile(pattern)
	if err != nil {
		return false, err
	}
	matched, err := re.MatchString(file)
	if err != nil {
		return false, fmt.Errorf("matching %q against %s: %w", pattern, file, err)
	}
	return matched, nil
}

// FilterByPatterns keeps files matching include and not matching exclude.
// An empty include matches everything; an empty exclude excludes nothing.
func (m *Matcher) FilterByPatterns(files []string, include, exclude string) ([]string, error) {
	var kept []string
	for _, file := range files {
		ok, err := m.matchesPatterns(file, include, exclude)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, file)
		}
	}
	return kept, nil
}

func (m *Matcher) matchesPatterns(file, include, exclude string) (bool, error) {
	if include != "" {
		matched, err := m.search(include, file)
		if err != nil || !matched {
			return false, err
		}
	}

	if exclude != "" {
		matched, err := m.search(exclude, file)
		if err != nil || matched {
			return false, err
		}
	}

	return true, nil
}

// GetFilesForHook returns files that match the given hook's criteria
func (m *Matcher) GetFilesForHook(hook config.Hook, files []string) ([]string, error) {
	var matchingFiles []string
	for _, file := range files {
		ok, err := m.FileMatchesHook(file, hook)
		if err != nil {
			return nil, fmt.Errorf("hook %s: %w", hook.ID, err)
		}
		if ok {
			matchingFiles = append(matchingFiles, file)
		}
	}

	return matchingFiles, nil
}

// FileMatchesHook determines if a file matches a hook's filtering criteria
func (m *Matcher) FileMatchesHook(file string, hook config.Hook) (bool, error) {
	ok, err := m.matchesPatterns(file, hook.Files, hook.ExcludeRegex)
	if err != nil || !ok {
		return false, err
	}

	return m.matchesTypeFilters(file, hook), nil
}

// matchesTypeFilters checks if a file matches the type inclusion/exclusion criteria
func (m *Matcher) matchesTypeFilters(file string, hook config.Hook) bool {
	// types: every tag must match
	if len(hook.Types) > 0 && !m.types.MatchesAllTypes(file, hook.Types) {
		return false
	}

	// types_or: any tag may match
	if len(hook.TypesOr) > 0 && !m.types.MatchesAnyType(file, hook.TypesOr) {
		return false
	}

	if len(hook.ExcludeTypes) > 0 && m.types.MatchesAnyType(file, hook.ExcludeTypes) {
		return false
	}

	return true
}
