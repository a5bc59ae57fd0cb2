// Package formatting handles result formatting and output display
package formatting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/blairham/devtask/pkg/hook/execution"
)

const lineWidth = 79

// Formatter handles formatting and displaying hook execution results
type Formatter struct {
	out          io.Writer
	passedColor  *color.Color
	failedColor  *color.Color
	skippedColor *color.Color
	detailColor  *color.Color
	colorMode    string
	verbose      bool
	useColor     bool
}

// NewFormatter creates a new result formatter writing to out
func NewFormatter(out io.Writer, colorMode string, verbose bool) *Formatter {
	f := &Formatter{
		out:          out,
		colorMode:    colorMode,
		verbose:      verbose,
		useColor:     ShouldUseColor(colorMode, out),
		passedColor:  color.New(color.BgGreen, color.FgBlack),
		failedColor:  color.New(color.BgRed, color.FgWhite),
		skippedColor: color.New(color.BgCyan, color.FgBlack),
		detailColor:  color.New(color.Faint, color.FgWhite),
	}

	for _, c := range []*color.Color{f.passedColor, f.failedColor, f.skippedColor, f.detailColor} {
		if f.useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return f
}

// PrintResults prints hook execution results with appropriate formatting
func (f *Formatter) PrintResults(results []execution.Result) {
	for _, result := range results {
		hookName := result.Hook.DisplayName()

		switch {
		case result.NotRun:
			f.printStatusLine(hookName, "(an earlier hook failed)", f.skippedColor, "Not Run")
		case result.Skipped:
			f.printSkippedResult(result, hookName)
		case result.Success:
			f.printSuccessResult(result, hookName)
		default:
			f.printFailureResult(result, hookName)
		}
	}
}

// printStatusLine prints name, dots, an uncolored prefix and a colored status
// padded to the pre-commit line width
func (f *Formatter) printStatusLine(hookName, prefix string, statusColor *color.Color, status string) {
	dotsLength := max(lineWidth-len(hookName)-len(prefix)-len(status), 1)
	fmt.Fprintf(f.out, "%s%s%s%s\n", hookName, strings.Repeat(".", dotsLength), prefix, statusColor.Sprint(status))
}

func (f *Formatter) printDetail(format string, args ...any) {
	fmt.Fprintln(f.out, f.detailColor.Sprintf(format, args...))
}

// printSuccessResult prints a successful hook result
func (f *Formatter) printSuccessResult(result execution.Result, hookName string) {
	f.printStatusLine(hookName, "", f.passedColor, "Passed")

	if !f.verbose && !result.Hook.Verbose {
		return
	}

	f.printDetail("- hook id: %s", result.Hook.ID)
	f.printDetail("- duration: %s", f.formatDuration(result.Duration))

	if output := strings.TrimSpace(result.Output); output != "" {
		fmt.Fprintf(f.out, "\n%s\n\n", output)
	}
}

// printFailureResult prints a failed hook result
func (f *Formatter) printFailureResult(result execution.Result, hookName string) {
	statusText := "Failed"
	if result.Timeout {
		statusText = "Failed (timeout)"
	}
	f.printStatusLine(hookName, "", f.failedColor, statusText)

	f.printDetail("- hook id: %s", result.Hook.ID)
	if f.verbose || result.Hook.Verbose {
		f.printDetail("- duration: %s", f.formatDuration(result.Duration))
	}
	if result.ExitCode != 0 {
		f.printDetail("- exit code: %d", result.ExitCode)
	}
	if result.Error != "" {
		f.printDetail("- error: %s", result.Error)
	}

	if result.Output != "" {
		fmt.Fprintf(f.out, "\n%s\n\n", f.formatHookOutput(result.Output))
	}
}

// printSkippedResult prints a hook that had no files to check
func (f *Formatter) printSkippedResult(result execution.Result, hookName string) {
	reason := result.SkipReason
	if reason == "" {
		reason = execution.SkipReasonNoFiles
	}
	f.printStatusLine(hookName, reason, f.skippedColor, "Skipped")

	if f.verbose {
		f.printDetail("- hook id: %s", result.Hook.ID)
	}
}

// formatHookOutput dims the detail lines devtask adds and leaves tool output alone
func (f *Formatter) formatHookOutput(output string) string {
	output = strings.TrimRight(output, "\n\r\t ")
	if !f.useColor {
		return output
	}

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), execution.ModifiedMessage) {
			lines[i] = f.detailColor.Sprint(strings.TrimSpace(line))
		}
	}
	return strings.Join(lines, "\n")
}

// formatDuration formats duration the way pre-commit prints it
func (f *Formatter) formatDuration(duration time.Duration) string {
	seconds := duration.Seconds()

	switch {
	case seconds < 0.005:
		return "0s"
	case seconds < 1.0:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 60.0:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		minutes := int(seconds) / 60
		remainingSeconds := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", minutes, remainingSeconds)
	}
}
