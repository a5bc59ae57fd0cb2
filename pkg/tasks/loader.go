package tasks

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default task file names, in lookup order
const (
	DefaultTaskFile = "tasks.yaml"
	JustfileName    = "justfile"
)

// candidateFiles are tried by Discover when no task file is configured
var candidateFiles = []string{
	DefaultTaskFile,
	"tasks.yml",
	JustfileName,
	"Justfile",
	".justfile",
}

// Discover returns the first existing task file in dir
func Discover(dir string) (string, error) {
	for _, name := range candidateFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoTaskFile, dir, strings.Join(candidateFiles, ", "))
}

// Load reads and validates a task file. The format is chosen from the file
// name: YAML for .yaml/.yml, the justfile subset otherwise.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	var file *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		file, err = ParseYAML(data)
	default:
		file, err = ParseJustfile(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}

	file.Path = path
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task file %s: %w", path, err)
	}
	return file, nil
}

// ParseYAML decodes a YAML task file
func ParseYAML(data []byte) (*File, error) {
	var file File
	if len(bytes.TrimSpace(data)) == 0 {
		return &file, nil
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// justIdentifier is the recipe and parameter name syntax of just
var justIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// parseRecipeHeader splits "name [param]" into the recipe name and its
// parameter. A single parameter, plain or variadic ("*args", "+args"), binds
// the arguments that {{args}} expands to.
func parseRecipeHeader(header string) (name, param string, err error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", "", errors.New("recipe name is missing")
	}

	name = strings.TrimPrefix(fields[0], "@")
	if !justIdentifier.MatchString(name) {
		return "", "", fmt.Errorf("invalid recipe name %q", fields[0])
	}

	switch params := fields[1:]; len(params) {
	case 0:
		return name, "", nil
	case 1:
		param = strings.TrimLeft(params[0], "*+$")
		if strings.Contains(param, "=") {
			return "", "", fmt.Errorf("recipe %s: parameter defaults are not supported", name)
		}
		if !justIdentifier.MatchString(param) {
			return "", "", fmt.Errorf("recipe %s: invalid parameter %q", name, params[0])
		}
		return name, param, nil
	default:
		return "", "", fmt.Errorf("recipe %s: only one parameter is supported, got %d", name, len(params))
	}
}

// bindParam rewrites {{param}} references in a recipe line to {{args}}
func bindParam(line, param string) string {
	if param == "" {
		return line
	}
	ref := regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(param) + `\s*\}\}`)
	return ref.ReplaceAllLiteralString(line, ArgsPlaceholder)
}

// ParseJustfile decodes the justfile subset devtask understands: recipe
// headers of the form "name:" or "name *args:", indented recipe lines, and
// "#" comment lines directly above a header. A leading "@" on a recipe line
// is dropped.
func ParseJustfile(data []byte) (*File, error) {
	var (
		file     File
		current  *Task
		param    string
		comments []string
		lineNo   int
	)

	flush := func() {
		if current != nil {
			file.Tasks = append(file.Tasks, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), " \t\r")

		if raw == "" {
			comments = nil
			continue
		}

		if raw[0] == ' ' || raw[0] == '\t' {
			body := strings.TrimSpace(raw)
			if current == nil {
				return nil, fmt.Errorf("line %d: recipe line outside of a recipe", lineNo)
			}
			if strings.HasPrefix(body, "#") {
				continue
			}
			current.Commands = append(current.Commands, bindParam(strings.TrimPrefix(body, "@"), param))
			continue
		}

		if strings.HasPrefix(raw, "#") {
			flush()
			comments = append(comments, strings.TrimSpace(strings.TrimPrefix(raw, "#")))
			continue
		}

		header, rest, ok := strings.Cut(raw, ":")
		if !ok || strings.HasPrefix(rest, "=") {
			return nil, fmt.Errorf("line %d: unsupported syntax %q", lineNo, raw)
		}
		if strings.TrimSpace(rest) != "" {
			return nil, fmt.Errorf("line %d: recipe dependencies are not supported", lineNo)
		}

		name, recipeParam, err := parseRecipeHeader(header)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		flush()
		current = &Task{
			Name:    name,
			Comment: strings.Join(comments, " "),
		}
		param = recipeParam
		comments = nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flush()
	return &file, nil
}
