package lint

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PolarWolf314/confvault/internal/ui"
)

// RenderReport writes every diagnostic with an underlined excerpt, then
// every file that could not be linted.
func RenderReport(w io.Writer, report *Report) error {
	for _, d := range report.Diagnostics {
		if err := RenderDiagnostic(w, d); err != nil {
			return err
		}
	}
	for _, f := range report.Failures {
		if _, err := fmt.Fprintf(w, "%s %s\n\n", ui.Error.Sprint("✗"), f.Error()); err != nil {
			return err
		}
	}
	return nil
}

// RenderDiagnostic writes one diagnostic:
//
//	× no_env_in_dev_config
//	  --> config/dev.exs:3:19
//	   |
//	 3 | config :app, key: System.get_env("KEY")
//	   |                   ^^^^^^^^^^^^^^^^^^^^^ Dev config must not read environment variables.
//	   |
//	  help: Use a static value ...
func RenderDiagnostic(w io.Writer, d Diagnostic) error {
	lineText := sourceLine(d.Source, d.Span.Start)
	gutter := len(fmt.Sprint(d.Line))
	pad := strings.Repeat(" ", gutter)
	bar := ui.Muted.Sprint("|")

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", ui.Error.Sprint("×"), ui.Bold.Sprint(d.Rule))
	fmt.Fprintf(&b, "%s%s %s\n", pad, ui.Muted.Sprint("-->"), ui.Path.Sprintf("%s:%d:%d", d.Path, d.Line, d.Column))
	fmt.Fprintf(&b, "%s %s\n", pad, bar)
	fmt.Fprintf(&b, "%s %s %s\n", ui.Muted.Sprint(d.Line), bar, lineText)
	fmt.Fprintf(&b, "%s %s %s%s %s\n", pad, bar,
		strings.Repeat(" ", d.Column-1),
		ui.Error.Sprint(strings.Repeat("^", caretWidth(d, lineText))),
		ui.Error.Sprint(d.Message))
	fmt.Fprintf(&b, "%s %s\n", pad, bar)
	fmt.Fprintf(&b, "%s%s %s\n\n", pad, ui.Info.Sprint("help:"), d.Advice)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary writes the timing footer of a lint run.
func RenderSummary(w io.Writer, report *Report) error {
	_, err := fmt.Fprintf(w, "Total time taken: %v (%v to load, %v running %d checks)\nTotal files: %d\n",
		report.Total+report.LoadTime, report.LoadTime, report.LintTime, report.Rules, report.Files)
	return err
}

// sourceLine returns the line containing offset, without its newline.
func sourceLine(src []byte, offset int) string {
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := bytes.IndexByte(src[offset:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += offset
	}
	return string(src[start:end])
}

// caretWidth is the span width in characters, cut at the end of the first
// line. Empty spans still get one caret.
func caretWidth(d Diagnostic, lineText string) int {
	text := d.Text()
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	n := utf8.RuneCountInString(text)
	if rest := utf8.RuneCountInString(lineText) - (d.Column - 1); n > rest {
		n = rest
	}
	if n < 1 {
		n = 1
	}
	return n
}
