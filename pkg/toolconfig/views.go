package toolconfig

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Project is the package metadata, from [tool.poetry] or PEP 621 [project]
type Project struct {
	Name         string            `mapstructure:"name"`
	Version      string            `mapstructure:"version"`
	Description  string            `mapstructure:"description"`
	License      string            `mapstructure:"license"`
	Authors      []Author          `mapstructure:"authors"`
	Dependencies map[string]string `mapstructure:"-"`
}

// Author is a package author
type Author struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// String renders the author in "Name <email>" form
func (a Author) String() string {
	if a.Email == "" {
		return a.Name
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Black holds the formatter settings
type Black struct {
	LineLength    int      `mapstructure:"line-length"`
	TargetVersion []string `mapstructure:"target-version"`
}

// Pylint holds the linter settings devtask knows about
type Pylint struct {
	MaxLineLength int      `mapstructure:"max-line-length"`
	GoodNames     []string `mapstructure:"good-names"`
}

// Decode decodes the table at key into out. Hyphenated TOML keys map to
// fields through mapstructure tags; a comma-separated string decodes into a
// string slice.
func (p *Provider) Decode(key string, out any) error {
	value, err := p.Get(key)
	if err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			authorHook,
			licenseHook,
			stringToTrimmedSliceHook,
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// decodeOptional decodes key when present and leaves out untouched otherwise
func (p *Provider) decodeOptional(key string, out any) error {
	err := p.Decode(key, out)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	return err
}

// Project returns the package metadata. Poetry's [tool.poetry] table wins
// over [project] when both exist.
func (p *Provider) Project() (Project, error) {
	var project Project

	switch {
	case p.Has("tool.poetry"):
		if err := p.Decode("tool.poetry", &project); err != nil {
			return project, err
		}
		deps, err := p.dependencyTable("tool.poetry.dependencies")
		if err != nil {
			return project, err
		}
		project.Dependencies = deps
	case p.Has("project"):
		if err := p.Decode("project", &project); err != nil {
			return project, err
		}
		deps, err := p.dependencyList("project.dependencies")
		if err != nil {
			return project, err
		}
		project.Dependencies = deps
	default:
		return project, fmt.Errorf("%w: neither tool.poetry nor project is declared", ErrKeyNotFound)
	}

	return project, nil
}

// DevDependencies returns the development-only dependency constraints
func (p *Provider) DevDependencies() (map[string]string, error) {
	for _, key := range []string{"tool.poetry.group.dev.dependencies", "tool.poetry.dev-dependencies"} {
		if p.Has(key) {
			return p.dependencyTable(key)
		}
	}
	if p.Has("project.optional-dependencies.dev") {
		return p.dependencyList("project.optional-dependencies.dev")
	}
	return map[string]string{}, nil
}

// Black returns [tool.black]
func (p *Provider) Black() (Black, error) {
	var black Black
	err := p.decodeOptional("tool.black", &black)
	return black, err
}

// Pylint returns the relevant [tool.pylint.*] tables
func (p *Provider) Pylint() (Pylint, error) {
	var pylint Pylint
	for _, key := range []string{"tool.pylint.format", "tool.pylint.basic", "tool.pylint"} {
		if err := p.decodeOptional(key, &pylint); err != nil {
			return pylint, err
		}
	}
	return pylint, nil
}

// dependencyTable reads a poetry-style name = constraint table. Table values
// such as { version = "^1.21", optional = true } contribute their version.
func (p *Provider) dependencyTable(key string) (map[string]string, error) {
	value, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	table, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotATable)
	}

	deps := make(map[string]string, len(table))
	for name, spec := range table {
		switch v := spec.(type) {
		case string:
			deps[name] = v
		case map[string]any:
			version, _ := v["version"].(string)
			deps[name] = version
		default:
			deps[name] = fmt.Sprint(v)
		}
	}
	return deps, nil
}

var requirementName = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)(\[[^\]]*\])?\s*(.*)$`)

// dependencyList reads a PEP 508 requirement list such as ["numpy>=1.21"]
func (p *Provider) dependencyList(key string) (map[string]string, error) {
	value, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array", key)
	}

	deps := make(map[string]string, len(list))
	for _, item := range list {
		req, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected requirement strings", key)
		}
		m := requirementName.FindStringSubmatch(req)
		if m == nil {
			return nil, fmt.Errorf("%s: invalid requirement %q", key, req)
		}
		deps[m[1]] = strings.TrimSpace(m[3])
	}
	return deps, nil
}

// SortedNames returns dependency names in alphabetical order
func SortedNames(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var authorForm = regexp.MustCompile(`^\s*(.*?)\s*<([^>]*)>\s*$`)

// authorHook decodes poetry's "Name <email>" strings into Author
func authorHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Author{}) {
		return data, nil
	}
	s, _ := data.(string)
	if m := authorForm.FindStringSubmatch(s); m != nil {
		return map[string]any{"name": m[1], "email": m[2]}, nil
	}
	return map[string]any{"name": strings.TrimSpace(s)}, nil
}

// licenseHook flattens PEP 621 license tables ({ text = "MIT" }) into a string
func licenseHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Map || to.Kind() != reflect.String {
		return data, nil
	}
	table, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	for _, key := range []string{"text", "file"} {
		if s, ok := table[key].(string); ok {
			return s, nil
		}
	}
	return data, nil
}

// stringToTrimmedSliceHook splits "i,j,k" into []string{"i","j","k"}
func stringToTrimmedSliceHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)
	if s == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
