package annotations

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultNamespace prefixes the annotation key when none is configured.
const DefaultNamespace = "confvault.dev"

// KeySuffix is appended to the namespace to form the annotation key.
const KeySuffix = "/config-secrets-location"

// SecretAnnotation is one decoded annotation comment.
type SecretAnnotation struct {
	Key             string
	Source          string
	Engine          string
	SecretPath      string
	SecretName      string
	DestinationFile string
	Raw             string
}

// Locator returns the annotation's secret locator.
func (a SecretAnnotation) Locator() Locator {
	return Locator{Source: a.Source, Engine: a.Engine, Path: a.SecretPath, Name: a.SecretName}
}

// Decode parses a comment of the form
// "# <key>: <source>:<engine>/<path>#<name>". The destination file is left
// empty; the parser fills it from the import that follows the comment.
func Decode(comment string) (SecretAnnotation, error) {
	text := strings.Replace(comment, "#", "", 1)

	parts := strings.Split(text, ": ")
	if len(parts) != 2 {
		return SecretAnnotation{}, fmt.Errorf("%w: annotation %q must contain exactly one ': '", cerrors.ErrInvalidLocator, strings.TrimSpace(comment))
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])

	loc, err := ParseLocator(value)
	if err != nil {
		return SecretAnnotation{}, err
	}

	return SecretAnnotation{
		Key:        key,
		Source:     loc.Source,
		Engine:     loc.Engine,
		SecretPath: loc.Path,
		SecretName: loc.Name,
		Raw:        value,
	}, nil
}

// importQuery matches an annotation comment directly followed by one of
// the three import shapes. Identifier names, literal equality and
// adjacency are checked in Go after matching.
const importQuery = `
(
  (comment) @comment
  .
  [
    (call
      target: (identifier) @import_fn
      (arguments (string) @import_file)) @bare

    (call
      target: (identifier) @guard_fn
      (arguments
        (call
          target: (_) @exists_fn
          (arguments (string) @checked_file)))
      (do_block
        (call
          target: (identifier) @import_fn
          (arguments (string) @import_file)) @guarded_import)) @block

    (binary_operator
      left: (call
        target: (_) @exists_fn
        (arguments (string) @checked_file))
      right: (call
        target: (identifier) @import_fn
        (arguments (string) @import_file))) @short_circuit
  ]
)
`

// Parser finds annotated imports in Elixir configuration files. It is
// safe for concurrent use; each Parse call builds its own tree.
type Parser struct {
	key     string
	query   *sitter.Query
	comment *regexp.Regexp
}

// NewParser compiles the import query for the given annotation namespace.
func NewParser(namespace string) (*Parser, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	q, err := syntax.Compile(importQuery)
	if err != nil {
		return nil, err
	}
	key := namespace + KeySuffix
	return &Parser{
		key:     key,
		query:   q,
		comment: regexp.MustCompile(`^#\s*` + regexp.QuoteMeta(key) + `:`),
	}, nil
}

// Key returns the full annotation key, e.g. confvault.dev/config-secrets-location.
func (p *Parser) Key() string {
	return p.key
}

// ParseFile reads path and returns its annotations.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]SecretAnnotation, error) {
	f, err := syntax.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Annotations(f), nil
}

// Parse returns the annotations in src in source order. Matches whose
// shape or payload is malformed are dropped.
func (p *Parser) Parse(ctx context.Context, src []byte) ([]SecretAnnotation, error) {
	f, err := syntax.Parse(ctx, "<input>", src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Annotations(f), nil
}

// Annotations runs the import query over an already parsed file.
func (p *Parser) Annotations(f *syntax.File) []SecretAnnotation {
	var out []SecretAnnotation
	for _, m := range f.Matches(p.query) {
		target, ok := p.importTarget(f, m)
		if !ok {
			continue
		}

		comment := strings.TrimSpace(f.Text(m.Node("comment")))
		annotation, err := Decode(comment)
		if err != nil {
			continue
		}
		annotation.DestinationFile = strings.TrimSpace(target)
		out = append(out, annotation)
	}
	return out
}

// importTarget validates a raw match and returns the imported file name.
func (p *Parser) importTarget(f *syntax.File, m syntax.Match) (string, bool) {
	comment := m.Node("comment")
	if comment == nil || !p.comment.MatchString(strings.TrimSpace(f.Text(comment))) {
		return "", false
	}

	var shape *sitter.Node
	switch {
	case m.Has("bare"):
		shape = m.Node("bare")
	case m.Has("block"):
		shape = m.Node("block")
		if f.Text(m.Node("guard_fn")) != "if" || !firstStatement(m.Node("guarded_import")) {
			return "", false
		}
	case m.Has("short_circuit"):
		shape = m.Node("short_circuit")
		op := shape.ChildByFieldName("operator")
		if op == nil || (f.Text(op) != "&&" && f.Text(op) != "and") {
			return "", false
		}
	default:
		return "", false
	}

	if !syntax.SameNode(comment.NextNamedSibling(), shape) {
		return "", false
	}
	if !isImportFn(f.Text(m.Node("import_fn"))) {
		return "", false
	}

	importString := m.Node("import_file")
	if importString.Parent().NamedChildCount() != 1 {
		return "", false
	}
	target, ok := f.StringLiteral(importString)
	if !ok {
		return "", false
	}

	if m.Has("exists_fn") {
		if f.Text(m.Node("exists_fn")) != "File.exists?" {
			return "", false
		}
		checked := m.Node("checked_file")
		if checked.Parent().NamedChildCount() != 1 {
			return "", false
		}
		checkedName, ok := f.StringLiteral(checked)
		if !ok || checkedName != target {
			return "", false
		}
	}

	return target, true
}

func isImportFn(name string) bool {
	return name == "import_config" || name == "import_config!"
}

// firstStatement reports whether n is the first non-comment statement of
// its enclosing block.
func firstStatement(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		return syntax.SameNode(child, n)
	}
	return false
}
