package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...any) string {
	return f.apply(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.apply(fmt.Sprintf(format, a...))
}

func (f Formatter) apply(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters for different types of CLI output.
var (
	// Code formats runnable commands. Yellow, or `backticks`.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file paths. Yellow, undecorated without color.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Key formats store keys and version descriptors. Cyan, or 'quotes'.
	Key = Formatter{color.New(color.FgCyan), "'", "'"}

	// Value formats stored values, already rendered as JSON.
	Value = Formatter{color.New(color.FgMagenta), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Muted formats secondary text. Faint, or (parentheses).
	Muted = Formatter{color.New(color.Faint), "(", ")"}
)

// Done returns a success line.
func Done(format string, a ...any) string {
	return Success.Sprint("✓") + " " + fmt.Sprintf(format, a...)
}

// Failed returns an error line.
func Failed(format string, a ...any) string {
	return Error.Sprint("✗") + " " + fmt.Sprintf(format, a...)
}

// Hint returns an informational line.
func Hint(format string, a ...any) string {
	return Info.Sprint("→") + " " + fmt.Sprintf(format, a...)
}

// Caution returns a warning line.
func Caution(format string, a ...any) string {
	return Warning.Sprint("⚠") + " " + fmt.Sprintf(format, a...)
}
