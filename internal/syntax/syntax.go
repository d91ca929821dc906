package syntax

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/elixir"
)

// Language returns the Elixir grammar.
func Language() *sitter.Language {
	return elixir.GetLanguage()
}

// Compile compiles a structural query against the Elixir grammar.
func Compile(pattern string) (*sitter.Query, error) {
	q, err := sitter.NewQuery([]byte(pattern), Language())
	if err != nil {
		return nil, fmt.Errorf("compiling query: %w", err)
	}
	return q, nil
}

// File is a syntax tree together with the exact buffer it was built from.
// Every offset and excerpt is computed against Source, never a copy.
type File struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree

	lineStarts []int
}

// ReadFile reads and parses path.
func ReadFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(ctx, path, src)
}

// Parse builds the syntax tree for src. A source whose tree contains
// syntax errors is rejected with ErrParseFailed.
func Parse(ctx context.Context, path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, cerrors.ErrParseFailed, err)
	}

	f := &File{Path: path, Source: src, Tree: tree}
	root := tree.RootNode()
	if root.HasError() {
		pos := root.StartPoint()
		if bad := firstError(root); bad != nil {
			pos = bad.StartPoint()
		}
		tree.Close()
		return nil, fmt.Errorf("%s:%d:%d: %w", path, pos.Row+1, pos.Column+1, cerrors.ErrParseFailed)
	}
	return f, nil
}

// Close releases the tree.
func (f *File) Close() {
	if f.Tree != nil {
		f.Tree.Close()
	}
}

// Root returns the top-level "source" node.
func (f *File) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// Text returns the source text covered by n.
func (f *File) Text(n *sitter.Node) string {
	return n.Content(f.Source)
}

// Offset converts a row/column point into a byte offset in Source. The
// result is clamped to the buffer and moved back onto a rune boundary.
func (f *File) Offset(p sitter.Point) int {
	if f.lineStarts == nil {
		f.lineStarts = lineStarts(f.Source)
	}

	row := int(p.Row)
	if row >= len(f.lineStarts) {
		return len(f.Source)
	}
	off := f.lineStarts[row] + int(p.Column)
	if off > len(f.Source) {
		off = len(f.Source)
	}
	for off > 0 && off < len(f.Source) && !utf8.RuneStart(f.Source[off]) {
		off--
	}
	return off
}

// Position returns the 1-based line and column of a byte offset.
func (f *File) Position(offset int) (line, col int) {
	if f.lineStarts == nil {
		f.lineStarts = lineStarts(f.Source)
	}
	line = 1
	for i, start := range f.lineStarts {
		if start > offset {
			break
		}
		line = i + 1
	}
	start := f.lineStarts[line-1]
	col = utf8.RuneCount(f.Source[start:offset]) + 1
	return line, col
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i := 0; ; {
		j := bytes.IndexByte(src[i:], '\n')
		if j < 0 {
			break
		}
		i += j + 1
		starts = append(starts, i)
	}
	return starts
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			if bad := firstError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}
