// Package toolconfig reads and writes per-tool settings kept in pyproject.toml.
//
// Values are addressed by dotted keys such as "tool.black.line-length". The
// provider stores exactly what it was given: a value written with Set is the
// value Get returns, with no conversion in between. Edits made with Set are
// written back into the original text, so comments and table order survive a
// Save.
package toolconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/blairham/devtask/pkg/logging"
)

// DefaultFileName is the manifest devtask reads tool settings from
const DefaultFileName = "pyproject.toml"

var (
	// ErrKeyNotFound is returned when a dotted key has no value
	ErrKeyNotFound = errors.New("key not found")
	// ErrNotATable is returned when a key path runs through a non-table value
	ErrNotATable = errors.New("not a table")
	// ErrEmptyKey is returned for a blank key
	ErrEmptyKey = errors.New("empty key")
)

// Provider holds one parsed configuration document
type Provider struct {
	path string
	tree map[string]any
	// source is the document text with every Set applied. When nil the
	// document is encoded from tree.
	source []byte
}

// New returns an empty provider
func New() *Provider {
	return &Provider{tree: make(map[string]any), source: []byte{}}
}

// Load reads a TOML manifest from disk
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.path = path
	return p, nil
}

// Parse decodes a TOML document
func Parse(data []byte) (*Provider, error) {
	tree := make(map[string]any)
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return &Provider{tree: tree, source: bytes.Clone(data)}, nil
}

// Path returns the file the provider was loaded from, if any
func (p *Provider) Path() string {
	return p.path
}

// Get returns the value stored at key
func (p *Provider) Get(key string) (any, error) {
	parts, err := SplitKey(key)
	if err != nil {
		return nil, err
	}

	var current any = p.tree
	for i, part := range parts {
		table, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %w", strings.Join(parts[:i], "."), ErrNotATable)
		}
		current, ok = table[part]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
	}
	return current, nil
}

// Has reports whether key has a value
func (p *Provider) Has(key string) bool {
	_, err := p.Get(key)
	return err == nil
}

// Set stores value at key, creating intermediate tables as needed
func (p *Provider) Set(key string, value any) error {
	parts, err := SplitKey(key)
	if err != nil {
		return err
	}

	table := p.tree
	for i, part := range parts[:len(parts)-1] {
		next, exists := table[part]
		if !exists {
			child := make(map[string]any)
			table[part] = child
			table = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: %w", strings.Join(parts[:i+1], "."), ErrNotATable)
		}
		table = child
	}

	table[parts[len(parts)-1]] = value
	if p.source != nil {
		p.source = p.splice(parts, value)
	}
	return nil
}

// splice applies one Set to the document text. It returns nil when the edit
// cannot be made in place or does not decode to the same tree.
func (p *Provider) splice(parts []string, value any) []byte {
	log := logging.NewLogger("toolconfig").WithField("key", strings.Join(parts, "."))

	edited, err := spliceSet(p.source, parts, value)
	if err == nil {
		err = p.matchesTree(edited)
	}
	if err != nil {
		log.WithError(err).Debug("rewriting the whole document")
		return nil
	}
	return edited
}

func (p *Provider) matchesTree(data []byte) error {
	parsed := make(map[string]any)
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return err
	}
	got, err := toml.Marshal(parsed)
	if err != nil {
		return err
	}
	want, err := toml.Marshal(p.tree)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return errNotInPlace
	}
	return nil
}

// Keys lists every leaf key under prefix, sorted. An empty prefix lists all.
func (p *Provider) Keys(prefix string) ([]string, error) {
	var root any = p.tree
	if prefix != "" {
		var err error
		root, err = p.Get(prefix)
		if err != nil {
			return nil, err
		}
	}

	var keys []string
	collectKeys(prefix, root, &keys)
	sort.Strings(keys)
	return keys, nil
}

func collectKeys(prefix string, value any, keys *[]string) {
	table, ok := value.(map[string]any)
	if !ok {
		*keys = append(*keys, prefix)
		return
	}
	for name, child := range table {
		segment := quoteSegment(name)
		if prefix != "" {
			segment = prefix + "." + segment
		}
		collectKeys(segment, child, keys)
	}
}

// Marshal encodes the document as TOML
func (p *Provider) Marshal() ([]byte, error) {
	if p.source != nil {
		return bytes.Clone(p.source), nil
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(p.tree); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the document to path, or back to the file it was loaded from
// when path is empty
func (p *Provider) Save(path string) error {
	if path == "" {
		path = p.path
	}
	if path == "" {
		return errors.New("no path to save configuration to")
	}

	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	p.path = path
	return nil
}

// ParseValue interprets a command-line value as a TOML value, so that "88"
// becomes an integer and `["i", "j"]` an array. Anything that is not a valid
// TOML value is kept as a plain string.
func ParseValue(raw string) any {
	var doc map[string]any
	if err := toml.Unmarshal([]byte("v = "+raw), &doc); err != nil {
		return raw
	}
	return doc["v"]
}

// FormatValue renders a stored value for display: strings verbatim, tables
// as a TOML document and everything else as its TOML literal.
func FormatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		data, err := toml.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimRight(string(data), "\n")
	default:
		data, err := toml.Marshal(map[string]any{"v": v})
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimPrefix(strings.TrimRight(string(data), "\n"), "v = ")
	}
}

// SplitKey splits a dotted key into segments. Segments may be double quoted
// to contain dots, e.g. tool."my.tool".enabled.
func SplitKey(key string) ([]string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrEmptyKey
	}

	var (
		parts   []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range key {
		switch {
		case r == '"':
			quoted = !quoted
		case r == '.' && !quoted:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in key %q", key)
	}
	parts = append(parts, current.String())

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w segment in %q", ErrEmptyKey, key)
		}
	}
	return parts, nil
}

func quoteSegment(name string) string {
	if strings.ContainsAny(name, ". \"") {
		return `"` + name + `"`
	}
	return name
}
