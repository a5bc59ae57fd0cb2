package toolconfig

import "fmt"

// SampleManifest returns the pyproject.toml of a small Python scripting
// repository with poetry metadata and formatter and linter settings.
func SampleManifest() *Provider {
	p := New()
	for _, setting := range []struct {
		key   string
		value any
	}{
		{"tool.poetry.name", "advent-of-code-2021"},
		{"tool.poetry.version", "0.1.0"},
		{"tool.poetry.description", "Advent of Code 2021 answers"},
		{"tool.poetry.authors", []any{"Your Name <you@example.com>"}},
		{"tool.poetry.license", "MIT"},
		{"tool.poetry.dependencies.python", "^3.10"},
		{"tool.poetry.dependencies.more-itertools", "^8.12.0"},
		{"tool.poetry.dependencies.numpy", "^1.21.4"},
		{"tool.poetry.dev-dependencies.black", "^21.12b0"},
		{"tool.poetry.dev-dependencies.pytest", "^6.2.5"},
		{"tool.poetry.dev-dependencies.pydocstyle", "^6.1.1"},
		{"tool.poetry.dev-dependencies.pylint", "^2.12.2"},
		{"tool.poetry.dev-dependencies.pre-commit", "^2.16.0"},
		{"tool.black.line-length", int64(88)},
		{"tool.black.target-version", []any{"py310"}},
		{"tool.pylint.format.max-line-length", int64(88)},
		{"tool.pylint.basic.good-names", []any{"i", "j", "k", "x", "y", "z", "df", "_"}},
		{"tool.devtask.hook-config", ".pre-commit-config.yaml"},
		{"tool.devtask.color", "auto"},
		{"build-system.requires", []any{"poetry-core>=1.0.0"}},
		{"build-system.build-backend", "poetry.core.masonry.api"},
	} {
		if err := p.Set(setting.key, setting.value); err != nil {
			panic(fmt.Sprintf("sample manifest: %v", err))
		}
	}
	return p
}
