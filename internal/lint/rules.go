package lint

import (
	"github.com/PolarWolf314/confvault/internal/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// envQuery matches Module.function("NAME", ...) calls; the module and
// function names are checked in Go.
const envQuery = `
(call
  target: (dot
    left: (alias) @module
    right: (identifier) @function)
  (arguments . (string) @variable)) @call
`

var envFunctions = map[string]bool{
	"get_env":    true,
	"fetch_env":  true,
	"fetch_env!": true,
}

// envRule reports System.get_env/fetch_env/fetch_env! calls.
type envRule struct {
	name    string
	glob    string
	explain string
	advice  string
	query   *sitter.Query
}

func (r *envRule) Name() string         { return r.name }
func (r *envRule) Glob() string         { return r.glob }
func (r *envRule) Explain() string      { return r.explain }
func (r *envRule) Advice() string       { return r.advice }
func (r *envRule) Query() *sitter.Query { return r.query }

func (r *envRule) Evaluate(f *syntax.File) []Diagnostic {
	var out []Diagnostic
	for _, m := range f.Matches(r.query) {
		if f.Text(m.Node("module")) != "System" || !envFunctions[f.Text(m.Node("function"))] {
			continue
		}
		out = append(out, diagnose(r, f, m.Node("call")))
	}
	return out
}

// NewNoEnvInDevConfig reports environment reads in config/dev.exs.
func NewNoEnvInDevConfig() (Rule, error) {
	q, err := syntax.Compile(envQuery)
	if err != nil {
		return nil, err
	}
	return &envRule{
		name:    "no_env_in_dev_config",
		glob:    "**/config/dev.exs",
		explain: "Dev config must not read environment variables.",
		advice:  "Use a static value instead of reading from an environment variable. If this is a secret, move it to `dev.secrets.exs` instead.",
		query:   q,
	}, nil
}

// NewNoEnvInMainConfig reports environment reads in config/config.exs,
// which is evaluated at build time.
func NewNoEnvInMainConfig() (Rule, error) {
	q, err := syntax.Compile(envQuery)
	if err != nil {
		return nil, err
	}
	return &envRule{
		name:    "no_env_in_main_config",
		glob:    "**/config/config.exs",
		explain: "Main config must not read environment variables; it is evaluated at compile time.",
		advice:  "Move environment reads to `config/runtime.exs` so they are evaluated when the release starts.",
		query:   q,
	}, nil
}

// importQuery matches bare, block-guarded and short-circuit imports.
const importQuery = `
[
  (call
    target: (identifier) @guard_fn
    (arguments
      (call
        target: (_) @exists_fn
        (arguments (string) @checked_file)))
    (do_block
      (call
        target: (identifier) @import_fn
        (arguments (string) @import_file)))) @block

  (binary_operator
    left: (call
      target: (_) @exists_fn
      (arguments (string) @checked_file))
    right: (call
      target: (identifier) @import_fn
      (arguments (string) @import_file))) @short_circuit

  (call
    target: (identifier) @import_fn
    (arguments (string))) @bare
]
`

// guardedImport requires top-level import_config calls to be wrapped in a
// File.exists? check for the same file.
type guardedImport struct {
	query *sitter.Query
}

// NewGuardedImport builds use_import_config_with_file_exists_checking.
func NewGuardedImport() (Rule, error) {
	q, err := syntax.Compile(importQuery)
	if err != nil {
		return nil, err
	}
	return &guardedImport{query: q}, nil
}

func (r *guardedImport) Name() string         { return "use_import_config_with_file_exists_checking" }
func (r *guardedImport) Glob() string         { return "**/config/dev.exs" }
func (r *guardedImport) Query() *sitter.Query { return r.query }

func (r *guardedImport) Explain() string {
	return "Consider checking the existence of the file before importing it with `File.exists?/1`."
}

func (r *guardedImport) Advice() string {
	return "Wrap the import in `if File.exists?(\"file.exs\") do ... end` with the same file name, so the config still loads when the file is absent."
}

func (r *guardedImport) Evaluate(f *syntax.File) []Diagnostic {
	var out []Diagnostic
	seen := map[Span]bool{}
	for _, m := range f.Matches(r.query) {
		if !isImportFn(f.Text(m.Node("import_fn"))) {
			continue
		}

		switch {
		case m.Has("bare"):
			// Nested imports are handled by the enclosing construct.
			call := m.Node("bare")
			if parent := call.Parent(); parent != nil && parent.Type() != "source" {
				continue
			}
			out = append(out, diagnose(r, f, call))

		case m.Has("block"), m.Has("short_circuit"):
			if f.Text(m.Node("exists_fn")) != "File.exists?" {
				continue
			}
			if m.Has("block") && f.Text(m.Node("guard_fn")) != "if" {
				continue
			}
			if f.Text(m.Node("checked_file")) == f.Text(m.Node("import_file")) {
				continue
			}
			node := m.Node("block")
			if node == nil {
				node = m.Node("short_circuit")
			}
			d := diagnose(r, f, node)
			if seen[d.Span] {
				continue
			}
			seen[d.Span] = true
			out = append(out, d)
		}
	}
	return out
}

func isImportFn(name string) bool {
	return name == "import_config" || name == "import_config!"
}
