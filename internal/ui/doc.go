// Package ui provides semantic text formatting and interactive prompts for
// CLI output.
//
// Formatters render content (paths, locators, diff lines) with colors when
// the terminal supports them. When NO_COLOR is set or the terminal doesn't
// support colors, text decorations are used instead:
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - DeletedEmphasis / InsertedEmphasis: [-removed-] / {+added+}
//
// TerminalPrompter implements the selection and confirmation questions the
// push workflow asks. It refuses to prompt when stdin is not a terminal.
package ui
