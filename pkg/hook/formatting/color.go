package formatting

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Color modes accepted by --color and [tool.devtask].color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ShouldUseColor resolves a color mode for output written to w. In auto
// mode NO_COLOR turns color off, otherwise color follows whether w is a terminal.
func ShouldUseColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
