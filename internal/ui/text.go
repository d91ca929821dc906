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
func (f Formatter) Sprint(a ...interface{}) string {
	text := fmt.Sprint(a...)
	if NoColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	text := fmt.Sprintf(format, a...)
	if NoColor() {
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

// NoColor returns true if color output should be disabled.
func NoColor() bool {
	// Check NO_COLOR environment variable (https://no-color.org/).
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Semantic formatters for different types of CLI output.
var (
	// Code formats runnable commands.
	// Yellow with color, `backticks` without.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file or directory paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Locator formats secret locators like vault:secret/team/dev#dev.secrets.exs.
	Locator = Formatter{color.New(color.FgCyan), "", ""}

	// Success formats success indicators and messages.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error formats error indicators and messages.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats warning indicators and messages.
	Warning = Formatter{color.New(color.FgHiYellow), "", ""}

	// Info formats informational hints.
	Info = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats emphasized user values.
	// Cyan with color, 'single quotes' without.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats de-emphasized text such as line numbers.
	Muted = Formatter{color.New(color.Faint), "", ""}

	// Bold formats labels in per-entry reports.
	Bold = Formatter{color.New(color.Bold), "", ""}
)

// Diff line formatters. Emphasized variants mark the changed sub-ranges of
// a line; without color they fall back to [-…-] and {+…+} markers.
var (
	Deleted           = Formatter{color.New(color.FgRed), "", ""}
	Inserted          = Formatter{color.New(color.FgGreen), "", ""}
	Unchanged         = Formatter{color.New(color.Faint), "", ""}
	DeletedEmphasis   = Formatter{color.New(color.FgRed, color.Underline, color.BgBlack), "[-", "-]"}
	InsertedEmphasis  = Formatter{color.New(color.FgGreen, color.Underline, color.BgBlack), "{+", "+}"}
	UnchangedEmphasis = Formatter{color.New(color.Faint, color.Underline), "", ""}
)
