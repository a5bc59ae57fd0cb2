package tasks

// DefaultFile returns the task table of a Python scripting repository: format,
// lint, docstring checks, cache cleanup, a pre-push smoke run and the answer
// script.
func DefaultFile() *File {
	return &File{
		Path: DefaultTaskFile,
		Tasks: []Task{
			{
				Name:     "black",
				Comment:  "Format every top-level script",
				Files:    "*.py",
				Commands: []string{"black " + FilesPlaceholder},
			},
			{
				Name:     "pylint",
				Comment:  "Lint the scripts, first page of findings",
				Files:    "*.py",
				Commands: []string{"pylint --output-format=colorized " + FilesPlaceholder + " | head -n 40"},
			},
			{
				Name:     "clean",
				Comment:  "Remove cached bytecode",
				Commands: []string{"rm -rf __pycache__"},
			},
			{
				Name:     "checkdocstrings",
				Comment:  "Check docstring style, first page of findings",
				Files:    "*.py",
				Commands: []string{"pydocstyle " + FilesPlaceholder + " | head -n 40"},
			},
			{
				Name:     "prepre",
				Comment:  "Show status, then run every commit hook on all files",
				Commands: []string{"git status", "devtask check --all-files"},
			},
			{
				Name:     "answer",
				Comment:  "Run the puzzle answers",
				Commands: []string{"python advent.py " + ArgsPlaceholder},
			},
		},
	}
}
