package builtin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func readBack(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	require.NoError(t, err)
	return string(data)
}

func TestLookupAndIDs(t *testing.T) {
	assert.Equal(t, []string{
		"check-added-large-files",
		"check-toml",
		"check-yaml",
		"end-of-file-fixer",
		"trailing-whitespace",
	}, IDs())

	_, ok := Lookup("check-yaml")
	assert.True(t, ok)

	_, code, err := Run(context.Background(), "check-json", Request{})
	assert.ErrorIs(t, err, ErrUnknownHook)
	assert.Equal(t, 1, code)
}

func TestTrailingWhitespace(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"clean.py":  "x = 1\n",
		"dirty.py":  "x = 1   \ny = 2\t\n",
		"crlf.txt":  "a  \r\nb\r\n",
		"README.md": "hard break  \nsoft   \n",
	})

	output, code, err := Run(context.Background(), "trailing-whitespace", Request{
		Root:  root,
		Files: []string{"clean.py", "dirty.py", "crlf.txt", "README.md"},
		Args:  []string{"--markdown-linebreak-ext=md"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, code)
	assert.NotContains(t, output, "clean.py")
	assert.Contains(t, output, "Fixing dirty.py")
	assert.Contains(t, output, "Fixing crlf.txt")

	assert.Equal(t, "x = 1\n", readBack(t, root, "clean.py"))
	assert.Equal(t, "x = 1\ny = 2\n", readBack(t, root, "dirty.py"))
	assert.Equal(t, "a\r\nb\r\n", readBack(t, root, "crlf.txt"))
	assert.Equal(t, "hard break  \nsoft  \n", readBack(t, root, "README.md"))

	// a second pass finds nothing to fix
	output, code, err = Run(context.Background(), "trailing-whitespace", Request{
		Root:  root,
		Files: []string{"clean.py", "dirty.py", "crlf.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, output)
}

func TestTrailingWhitespace_KeepsMode(t *testing.T) {
	root := writeFiles(t, map[string]string{"run.sh": "echo hi \n"})
	require.NoError(t, os.Chmod(filepath.Join(root, "run.sh"), 0o755))

	_, code, err := Run(context.Background(), "trailing-whitespace", Request{Root: root, Files: []string{"run.sh"}})
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	info, err := os.Stat(filepath.Join(root, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestEndOfFileFixer(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
		fixed    bool
	}{
		{name: "already fine", content: "x = 1\n", expected: "x = 1\n"},
		{name: "empty", content: "", expected: ""},
		{name: "missing newline", content: "x = 1", expected: "x = 1\n", fixed: true},
		{name: "extra newlines", content: "x = 1\n\n\n", expected: "x = 1\n", fixed: true},
		{name: "only newlines", content: "\n\n", expected: "", fixed: true},
		{name: "crlf", content: "x = 1\r\n\r\n", expected: "x = 1\r\n", fixed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFiles(t, map[string]string{"f.txt": tt.content})

			output, code, err := Run(context.Background(), "end-of-file-fixer", Request{Root: root, Files: []string{"f.txt"}})
			require.NoError(t, err)

			assert.Equal(t, tt.expected, readBack(t, root, "f.txt"))
			if tt.fixed {
				assert.Equal(t, 1, code)
				assert.Equal(t, "Fixing f.txt\n", output)
			} else {
				assert.Equal(t, 0, code)
				assert.Empty(t, output)
			}
		})
	}
}

func TestCheckYAML(t *testing.T) {
	root := writeFiles(t, map[string]string{
		".pre-commit-config.yaml": "repos:\n- repo: local\n  hooks: []\n",
		"broken.yaml":             "key: [unclosed\n",
		"stream.yaml":             "a: 1\n---\nb: 2\n",
		"empty.yaml":              "",
	})

	output, code, err := Run(context.Background(), "check-yaml", Request{
		Root:  root,
		Files: []string{".pre-commit-config.yaml", "empty.yaml"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, output)

	output, code, err = Run(context.Background(), "check-yaml", Request{
		Root:  root,
		Files: []string{"broken.yaml", "stream.yaml"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "broken.yaml:")
	assert.Contains(t, output, "stream.yaml: expected a single document")

	output, code, err = Run(context.Background(), "check-yaml", Request{
		Root:  root,
		Files: []string{"stream.yaml"},
		Args:  []string{"--allow-multiple-documents"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, output)
}

func TestCheckTOML(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"pyproject.toml": "[tool.black]\nline-length = 88\n",
		"broken.toml":    "[tool.black\nline-length = 88\n",
	})

	_, code, err := Run(context.Background(), "check-toml", Request{Root: root, Files: []string{"pyproject.toml"}})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	output, code, err := Run(context.Background(), "check-toml", Request{Root: root, Files: []string{"broken.toml"}})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(output, "broken.toml:1:"), output)
}

func TestCheckAddedLargeFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"small.txt": "tiny",
		"big.bin":   strings.Repeat("x", 600*1024),
		"old.bin":   strings.Repeat("x", 600*1024),
	})
	files := []string{"small.txt", "big.bin", "old.bin"}
	added := []string{"small.txt", "big.bin"}

	output, code, err := Run(context.Background(), "check-added-large-files", Request{
		Root: root, Files: files, AddedFiles: added,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, "big.bin (600 KB) exceeds 500 KB.\n", output)

	output, code, err = Run(context.Background(), "check-added-large-files", Request{
		Root: root, Files: files, AddedFiles: added, Args: []string{"--maxkb=1000"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, output)

	output, code, err = Run(context.Background(), "check-added-large-files", Request{
		Root: root, Files: files, AddedFiles: added, Args: []string{"--enforce-all"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "old.bin (600 KB)")
}

func TestBuiltin_InvalidArgs(t *testing.T) {
	_, code, err := Run(context.Background(), "check-added-large-files", Request{Args: []string{"--maxkb=lots"}})
	require.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestBuiltin_Cancelled(t *testing.T) {
	root := writeFiles(t, map[string]string{"f.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, "end-of-file-fixer", Request{Root: root, Files: []string{"f.txt"}})
	assert.True(t, errors.Is(err, context.Canceled))
}
