package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Match is one query match with its captures grouped by capture name.
type Match struct {
	Pattern  uint16
	captures map[string][]*sitter.Node
}

// Node returns the first node captured under name, or nil.
func (m Match) Node(name string) *sitter.Node {
	nodes := m.captures[name]
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Has reports whether the match captured anything under name.
func (m Match) Has(name string) bool {
	return len(m.captures[name]) > 0
}

// Matches runs q over the whole tree and returns the raw matches in the
// order the query cursor yields them. Predicates are not applied; callers
// filter in Go.
func (f *File) Matches(q *sitter.Query) []Match {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, f.Root())

	var out []Match
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		match := Match{Pattern: m.PatternIndex, captures: make(map[string][]*sitter.Node, len(m.Captures))}
		for _, c := range m.Captures {
			name := q.CaptureNameForId(c.Index)
			match.captures[name] = append(match.captures[name], c.Node)
		}
		out = append(out, match)
	}
	return out
}

// SameNode reports whether a and b cover the same range with the same type.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// StringLiteral returns the content of a plain string node, one without
// interpolation. ok is false for anything else.
func (f *File) StringLiteral(n *sitter.Node) (string, bool) {
	if n == nil || n.Type() != "string" {
		return "", false
	}
	if n.NamedChildCount() != 1 {
		return "", false
	}
	content := n.NamedChild(0)
	if content.Type() != "quoted_content" {
		return "", false
	}
	return f.Text(content), true
}
