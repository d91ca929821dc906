package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Group is one hunk: a run of changes with surrounding context.
type Group struct {
	Lines []Line
}

// Groups walks the hunks of a comparison. Lines of a hunk are built only
// when Next reaches it. A Groups value cannot be rewound.
type Groups struct {
	a, b  []string
	codes [][]difflib.OpCode
	next  int
}

// NewGroups prepares the hunks of old versus new with context unchanged
// lines around every change. Identical inputs yield no hunks.
func NewGroups(old, new string, context int) *Groups {
	a, b, m := matcher(old, new)
	g := &Groups{a: a, b: b}
	// Without changes difflib still yields one group of equal lines.
	if codes := m.GetGroupedOpCodes(context); hasChange(codes) {
		g.codes = codes
	}
	return g
}

func hasChange(groups [][]difflib.OpCode) bool {
	for _, codes := range groups {
		for _, code := range codes {
			if code.Tag != 'e' {
				return true
			}
		}
	}
	return false
}

// Next returns the following hunk, or false when there are none left.
func (g *Groups) Next() (Group, bool) {
	if g.next >= len(g.codes) {
		return Group{}, false
	}
	codes := g.codes[g.next]
	g.next++

	var lines []Line
	for _, code := range codes {
		lines = appendOpCode(lines, g.a, g.b, code)
	}
	return Group{Lines: lines}, true
}
