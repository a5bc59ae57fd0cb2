package matching

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const sniffSize = 1024

// TypeRegistry maps file type tags to the files they describe
type TypeRegistry struct {
	extensions map[string][]string
	names      map[string][]string
	root       string
}

// NewTypeRegistry creates a registry whose content checks read files under root
func NewTypeRegistry(root string) *TypeRegistry {
	return &TypeRegistry{
		root: root,
		extensions: map[string][]string{
			"python":     {".py", ".pyw"},
			"pyi":        {".pyi"},
			"cython":     {".pyx", ".pxd"},
			"jupyter":    {".ipynb"},
			"toml":       {".toml"},
			"yaml":       {".yaml", ".yml"},
			"json":       {".json"},
			"ini":        {".ini", ".cfg"},
			"markdown":   {".md", ".markdown"},
			"rst":        {".rst"},
			"plain-text": {".txt"},
			"shell":      {".sh", ".bash", ".zsh"},
			"go":         {".go"},
			"javascript": {".js", ".mjs", ".cjs"},
			"typescript": {".ts", ".tsx"},
			"html":       {".html", ".htm"},
			"css":        {".css", ".scss"},
			"xml":        {".xml"},
			"sql":        {".sql"},
			"rust":       {".rs"},
			"c":          {".c", ".h"},
			"cpp":        {".cpp", ".cc", ".cxx", ".hpp"},
			"image":      {".png", ".jpg", ".jpeg", ".gif", ".ico", ".bmp", ".webp"},
			"pdf":        {".pdf"},
			"zip":        {".zip", ".whl", ".jar"},
			"gzip":       {".gz", ".tgz"},
		},
		names: map[string][]string{
			"toml":       {"poetry.lock", "pipfile", "cargo.lock"},
			"makefile":   {"makefile", "gnumakefile"},
			"justfile":   {"justfile", ".justfile"},
			"dockerfile": {"dockerfile"},
			"plain-text": {"license", "readme", "authors"},
		},
	}
}

// binaryTags never describe a text file
var binaryTags = []string{"image", "pdf", "zip", "gzip"}

// MatchesType checks if a file carries the given type tag
func (r *TypeRegistry) MatchesType(file, fileType string) bool {
	switch fileType {
	case "file":
		return true
	case "text":
		return r.isText(file)
	case "binary":
		return !r.isText(file)
	}

	ext := strings.ToLower(filepath.Ext(file))
	name := strings.ToLower(filepath.Base(file))

	if slices.Contains(r.extensions[fileType], ext) {
		return true
	}
	return slices.Contains(r.names[fileType], name)
}

// MatchesAnyType checks if file matches any of the given types
func (r *TypeRegistry) MatchesAnyType(file string, types []string) bool {
	return slices.ContainsFunc(types, func(fileType string) bool {
		return r.MatchesType(file, fileType)
	})
}

// MatchesAllTypes checks if file matches every one of the given types
func (r *TypeRegistry) MatchesAllTypes(file string, types []string) bool {
	for _, fileType := range types {
		if !r.MatchesType(file, fileType) {
			return false
		}
	}
	return true
}

// isText reports whether a file looks like text. Known binary extensions
// decide immediately; otherwise the first bytes are checked for NUL.
func (r *TypeRegistry) isText(file string) bool {
	for _, tag := range binaryTags {
		if r.MatchesType(file, tag) {
			return false
		}
	}

	f, err := os.Open(filepath.Join(r.root, file)) // #nosec G304 -- files come from the git index
	if err != nil {
		return true
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && n == 0 {
		return true
	}
	return !bytes.Contains(head[:n], []byte{0})
}
