package lint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/PolarWolf314/confvault/internal/syntax"
)

// SourceGlob selects the files a lint run looks at.
const SourceGlob = "**/*.{ex,exs}"

var skippedDirs = map[string]bool{
	".git":         true,
	"_build":       true,
	"deps":         true,
	"node_modules": true,
}

// Engine runs a fixed set of rules. Rules and their compiled queries are
// shared between goroutines; each file gets its own parser.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine for rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's rules.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Lint parses src once and runs every rule whose glob matches rel, the
// file's slash-separated path relative to the lint root. Diagnostics carry
// path as their Path.
func (e *Engine) Lint(ctx context.Context, path, rel string, src []byte) ([]Diagnostic, error) {
	var active []Rule
	for _, r := range e.rules {
		if ok, err := doublestar.Match(r.Glob(), rel); err == nil && ok {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}

	f, err := syntax.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Diagnostic
	for _, r := range active {
		out = append(out, r.Evaluate(f)...)
	}
	return out, nil
}

// FileError is a file that could not be linted.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Report is the result of one lint run.
type Report struct {
	// Diagnostics are ordered by file, then position.
	Diagnostics []Diagnostic
	Failures    []FileError

	Files int
	Rules int

	LoadTime time.Duration
	LintTime time.Duration
	Total    time.Duration
}

// Collect lists the Elixir sources under root, skipping build and
// dependency directories. Paths are returned sorted.
func Collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if ok, _ := doublestar.Match(SourceGlob, filepath.ToSlash(rel)); ok && d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// LintFiles lints files concurrently. A file that cannot be read or parsed
// is recorded in Report.Failures and does not stop the others.
func (e *Engine) LintFiles(ctx context.Context, root string, files []string) (*Report, error) {
	start := time.Now()

	type fileResult struct {
		diagnostics []Diagnostic
		err         error
		elapsed     time.Duration
	}
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			diags, err := e.lintFile(gctx, root, path)
			results[i] = fileResult{diagnostics: diags, err: err, elapsed: time.Since(began)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Files: len(files), Rules: len(e.rules)}
	for i, res := range results {
		report.LintTime += res.elapsed
		if res.err != nil {
			report.Failures = append(report.Failures, FileError{Path: files[i], Err: res.err})
			continue
		}
		report.Diagnostics = append(report.Diagnostics, res.diagnostics...)
	}

	sort.SliceStable(report.Diagnostics, func(i, j int) bool {
		a, b := report.Diagnostics[i], report.Diagnostics[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.Rule < b.Rule
	})

	report.Total = time.Since(start)
	return report, nil
}

func (e *Engine) lintFile(ctx context.Context, root, path string) ([]Diagnostic, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return e.Lint(ctx, path, filepath.ToSlash(rel), src)
}
