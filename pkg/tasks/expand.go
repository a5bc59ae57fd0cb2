package tasks

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

var safeShellWord = regexp.MustCompile(`^[A-Za-z0-9_./=:,+@%-]+$`)

// ShellQuote quotes s for inclusion in a POSIX shell command line
func ShellQuote(s string) string {
	if s != "" && safeShellWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = ShellQuote(word)
	}
	return strings.Join(quoted, " ")
}

// MatchFiles returns the slash-separated paths under dir matching pattern,
// sorted. "*" does not cross directory boundaries; use "**" for that.
// The .git directory is never descended into.
func MatchFiles(dir, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid files pattern %q: %w", pattern, err)
	}

	var matches []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if g.Match(rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// expandLine substitutes the placeholders of one command line. It returns
// false when the line should be skipped because it operates on files and
// the files pattern matched nothing.
func expandLine(line string, files []string, filesDeclared bool, args []string) (string, bool) {
	if strings.Contains(line, FilesPlaceholder) {
		if filesDeclared && len(files) == 0 {
			return "", false
		}
		line = strings.ReplaceAll(line, FilesPlaceholder, quoteAll(files))
	}
	line = strings.ReplaceAll(line, ArgsPlaceholder, quoteAll(args))
	return line, true
}
