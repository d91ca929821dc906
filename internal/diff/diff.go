package diff

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

// Op is the kind of a line in an edit script.
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) Sign() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	default:
		return " "
	}
}

// Range is a half-open byte range [Start, End) within a line.
type Range struct {
	Start int
	End   int
}

// Line is one entry of the edit script. OldIndex and NewIndex are 0-based
// line numbers; the side a line does not exist on is -1. Text keeps its
// trailing newline when the source had one.
type Line struct {
	Op       Op
	OldIndex int
	NewIndex int
	Text     string

	// Emphasis marks the changed parts of a replaced line.
	Emphasis []Range
}

// splitLines splits s after every newline. Joining the result gives s back.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func matcher(old, new string) (a, b []string, m *difflib.SequenceMatcher) {
	a, b = splitLines(old), splitLines(new)
	return a, b, difflib.NewMatcher(a, b)
}

// HasDiff reports whether old and new differ in any line.
func HasDiff(old, new string) bool {
	_, _, m := matcher(old, new)
	for _, code := range m.GetOpCodes() {
		if code.Tag != 'e' {
			return true
		}
	}
	return false
}

// Lines returns the full edit script. Concatenating the Text of every
// non-Insert line reproduces old; every non-Delete line reproduces new.
func Lines(old, new string) []Line {
	a, b, m := matcher(old, new)
	var out []Line
	for _, code := range m.GetOpCodes() {
		out = appendOpCode(out, a, b, code)
	}
	return out
}

func appendOpCode(out []Line, a, b []string, code difflib.OpCode) []Line {
	switch code.Tag {
	case 'e':
		for k := 0; k < code.I2-code.I1; k++ {
			out = append(out, Line{Op: Equal, OldIndex: code.I1 + k, NewIndex: code.J1 + k, Text: a[code.I1+k]})
		}
	case 'd':
		for i := code.I1; i < code.I2; i++ {
			out = append(out, Line{Op: Delete, OldIndex: i, NewIndex: -1, Text: a[i]})
		}
	case 'i':
		for j := code.J1; j < code.J2; j++ {
			out = append(out, Line{Op: Insert, OldIndex: -1, NewIndex: j, Text: b[j]})
		}
	case 'r':
		deleted := make([]Line, 0, code.I2-code.I1)
		for i := code.I1; i < code.I2; i++ {
			deleted = append(deleted, Line{Op: Delete, OldIndex: i, NewIndex: -1, Text: a[i]})
		}
		inserted := make([]Line, 0, code.J2-code.J1)
		for j := code.J1; j < code.J2; j++ {
			inserted = append(inserted, Line{Op: Insert, OldIndex: -1, NewIndex: j, Text: b[j]})
		}
		for k := 0; k < len(deleted) && k < len(inserted); k++ {
			deleted[k].Emphasis, inserted[k].Emphasis = Emphasis(deleted[k].Text, inserted[k].Text)
		}
		out = append(out, deleted...)
		out = append(out, inserted...)
	}
	return out
}

// Emphasis computes the changed character ranges of a replaced line pair.
// Ranges never cover the trailing newline.
func Emphasis(oldLine, newLine string) (oldRanges, newRanges []Range) {
	oldLine = strings.TrimSuffix(oldLine, "\n")
	newLine = strings.TrimSuffix(newLine, "\n")

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldLine, newLine, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	oldPos, newPos := 0, 0
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			oldRanges = append(oldRanges, Range{Start: oldPos, End: oldPos + n})
			oldPos += n
		case diffmatchpatch.DiffInsert:
			newRanges = append(newRanges, Range{Start: newPos, End: newPos + n})
			newPos += n
		}
	}
	return MergeRanges(oldRanges), MergeRanges(newRanges)
}

// MergeRanges sorts ranges and coalesces those that overlap or touch.
// Empty ranges are dropped.
func MergeRanges(ranges []Range) []Range {
	sorted := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.End > r.Start {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
