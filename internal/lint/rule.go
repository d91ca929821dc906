package lint

import (
	"github.com/PolarWolf314/confvault/internal/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// Span is a half-open byte range [Start, End) into the linted source.
type Span struct {
	Start int
	End   int
}

// Diagnostic is one rule violation.
type Diagnostic struct {
	Rule    string
	Path    string
	Span    Span
	Line    int // 1-based line of Span.Start.
	Column  int // 1-based, in characters.
	Message string
	Advice  string

	// Source is the buffer the span points into. Diagnostics from one file
	// share it.
	Source []byte
}

// Text returns the source covered by the span.
func (d Diagnostic) Text() string {
	return string(d.Source[d.Span.Start:d.Span.End])
}

// Rule is one structural check over Elixir config files.
type Rule interface {
	Name() string
	// Glob selects the files the rule applies to, relative to the lint root.
	Glob() string
	Explain() string
	Advice() string
	Query() *sitter.Query
	Evaluate(f *syntax.File) []Diagnostic
}

// diagnose builds a diagnostic for rule r covering node n.
func diagnose(r Rule, f *syntax.File, n *sitter.Node) Diagnostic {
	start := f.Offset(n.StartPoint())
	end := f.Offset(n.EndPoint())
	if end < start {
		end = start
	}
	line, col := f.Position(start)
	return Diagnostic{
		Rule:    r.Name(),
		Path:    f.Path,
		Span:    Span{Start: start, End: end},
		Line:    line,
		Column:  col,
		Message: r.Explain(),
		Advice:  r.Advice(),
		Source:  f.Source,
	}
}

// DefaultRules compiles every built-in rule.
func DefaultRules() ([]Rule, error) {
	noEnvDev, err := NewNoEnvInDevConfig()
	if err != nil {
		return nil, err
	}
	noEnvMain, err := NewNoEnvInMainConfig()
	if err != nil {
		return nil, err
	}
	guardedImport, err := NewGuardedImport()
	if err != nil {
		return nil, err
	}
	return []Rule{noEnvMain, noEnvDev, guardedImport}, nil
}
