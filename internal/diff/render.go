package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/PolarWolf314/confvault/internal/ui"
)

// DividerWidth is the width of the line printed between hunks.
const DividerWidth = 80

// Render writes a titled, colored line diff of old versus new to w.
func Render(w io.Writer, title, old, new string) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, ui.Bold.Sprint(title)); err != nil {
			return err
		}
	}

	groups := NewGroups(old, new, DefaultContext)
	for i := 0; ; i++ {
		group, ok := groups.Next()
		if !ok {
			break
		}
		if i > 0 {
			if _, err := fmt.Fprintln(w, ui.Muted.Sprint(strings.Repeat("-", DividerWidth))); err != nil {
				return err
			}
		}
		for _, line := range group.Lines {
			if _, err := fmt.Fprintln(w, renderLine(line)); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderLine(l Line) string {
	numbers := ui.Muted.Sprintf("%s %s |", lineNumber(l.OldIndex), lineNumber(l.NewIndex))

	plain, emphasis := ui.Unchanged, ui.UnchangedEmphasis
	switch l.Op {
	case Delete:
		plain, emphasis = ui.Deleted, ui.DeletedEmphasis
	case Insert:
		plain, emphasis = ui.Inserted, ui.InsertedEmphasis
	}

	text := strings.TrimSuffix(l.Text, "\n")
	var b strings.Builder
	b.WriteString(numbers)
	b.WriteString(plain.Sprint(l.Op.Sign()))

	pos := 0
	for _, r := range l.Emphasis {
		if r.Start > len(text) {
			break
		}
		end := min(r.End, len(text))
		if r.Start > pos {
			b.WriteString(plain.Sprint(text[pos:r.Start]))
		}
		b.WriteString(emphasis.Sprint(text[r.Start:end]))
		pos = end
	}
	if pos < len(text) {
		b.WriteString(plain.Sprint(text[pos:]))
	}
	return b.String()
}

func lineNumber(index int) string {
	if index < 0 {
		return "    "
	}
	return fmt.Sprintf("%4d", index+1)
}
