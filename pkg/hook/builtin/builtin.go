// Package builtin implements the pre-commit-hooks checks devtask runs
// in-process instead of installing a Python environment for them.
package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/jessevdk/go-flags"
)

// ErrUnknownHook is returned for a hook id with no in-process implementation
var ErrUnknownHook = errors.New("no builtin hook")

// Request is the input of one builtin hook run
type Request struct {
	Root       string
	Files      []string
	AddedFiles []string
	Args       []string
}

// Func checks or fixes the request's files, writing findings to out.
// It returns the hook's exit status.
type Func func(ctx context.Context, req Request, out io.Writer) (int, error)

var registry = map[string]Func{
	"trailing-whitespace":     trailingWhitespace,
	"end-of-file-fixer":       endOfFileFixer,
	"check-yaml":              checkYAML,
	"check-toml":              checkTOML,
	"check-added-large-files": checkAddedLargeFiles,
}

// Lookup returns the implementation of a builtin hook
func Lookup(id string) (Func, bool) {
	fn, ok := registry[id]
	return fn, ok
}

// IDs lists the builtin hook ids in sorted order
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Run executes a builtin hook and returns its output and exit status
func Run(ctx context.Context, id string, req Request) (string, int, error) {
	fn, ok := Lookup(id)
	if !ok {
		return "", 1, fmt.Errorf("%w: %s", ErrUnknownHook, id)
	}

	var out bytes.Buffer
	code, err := fn(ctx, req, &out)
	return out.String(), code, err
}

// parseArgs fills opts from hook args and returns any positional leftovers
func parseArgs(opts any, args []string) ([]string, error) {
	parser := flags.NewParser(opts, flags.IgnoreUnknown)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, fmt.Errorf("invalid hook args: %w", err)
	}
	return rest, nil
}

func readFile(root, file string) ([]byte, error) {
	return os.ReadFile(filepath.Join(root, file)) // #nosec G304 -- files come from the git index
}

func writeFile(root, file string, data []byte) error {
	path := filepath.Join(root, file)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
