package lint

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules failed: %v", err)
	}
	return NewEngine(rules...)
}

func lint(t *testing.T, rel, src string) []Diagnostic {
	t.Helper()
	diags, err := newTestEngine(t).Lint(context.Background(), rel, rel, []byte(src))
	if err != nil {
		t.Fatalf("Lint failed: %v", err)
	}
	return diags
}

func byRule(diags []Diagnostic, rule string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Rule == rule {
			out = append(out, d)
		}
	}
	return out
}

func TestNoEnvInDevConfig(t *testing.T) {
	src := `# Entwicklungsumgebung – ünïcode ✓
import Config

config :app, a: System.get_env("A")
config :app, b: System.fetch_env("B")
config :app, ümlaut: System.fetch_env!("C")
config :app, d: Application.get_env(:app, :d)
`
	diags := byRule(lint(t, "config/dev.exs", src), "no_env_in_dev_config")

	want := []string{`System.get_env("A")`, `System.fetch_env("B")`, `System.fetch_env!("C")`}
	if len(diags) != len(want) {
		t.Fatalf("Expected %d diagnostics, got %d: %+v", len(want), len(diags), diags)
	}
	for i, d := range diags {
		if d.Text() != want[i] {
			t.Errorf("[%d] span text = %q, want %q", i, d.Text(), want[i])
		}
		if d.Span.Start != strings.Index(src, want[i]) {
			t.Errorf("[%d] span start = %d, want %d", i, d.Span.Start, strings.Index(src, want[i]))
		}
		if d.Line != 4+i {
			t.Errorf("[%d] line = %d, want %d", i, d.Line, 4+i)
		}
	}
	// Columns count characters, not bytes.
	if diags[2].Column != len([]rune("config :app, ümlaut: "))+1 {
		t.Errorf("column = %d", diags[2].Column)
	}
}

func TestNoEnvInMainConfig(t *testing.T) {
	src := "import Config\nconfig :app, key: System.get_env(\"KEY\")\n"

	if got := byRule(lint(t, "config/config.exs", src), "no_env_in_main_config"); len(got) != 1 {
		t.Errorf("Expected 1 diagnostic in config.exs, got %d", len(got))
	}
	// The dev rule does not apply to config.exs, nor the main rule to dev.exs.
	if got := byRule(lint(t, "config/config.exs", src), "no_env_in_dev_config"); len(got) != 0 {
		t.Errorf("Expected no dev diagnostics in config.exs, got %d", len(got))
	}
	if got := byRule(lint(t, "config/dev.exs", src), "no_env_in_main_config"); len(got) != 0 {
		t.Errorf("Expected no main diagnostics in dev.exs, got %d", len(got))
	}
}

func TestGuardedImport(t *testing.T) {
	const rule = "use_import_config_with_file_exists_checking"

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "top-level import",
			src:  "import Config\nimport_config \"dev.secrets.exs\"\n",
			want: []string{`import_config "dev.secrets.exs"`},
		},
		{
			name: "same import nested in an unrelated block",
			src:  "import Config\nif Mix.env() == :dev do\n  import_config \"dev.secrets.exs\"\nend\n",
			want: nil,
		},
		{
			name: "guarded with the same file",
			src:  "if File.exists?(\"dev.secrets.exs\") do\n  import_config \"dev.secrets.exs\"\nend\n",
			want: nil,
		},
		{
			name: "guarded with another file",
			src:  "if File.exists?(\"a.exs\") do\n  import_config \"b.exs\"\nend\n",
			want: []string{"if File.exists?(\"a.exs\") do\n  import_config \"b.exs\"\nend"},
		},
		{
			name: "short circuit with the same file",
			src:  "File.exists?(\"a.exs\") && import_config(\"a.exs\")\n",
			want: nil,
		},
		{
			name: "short circuit with another file",
			src:  "File.exists?(\"a.exs\") && import_config(\"b.exs\")\n",
			want: []string{`File.exists?("a.exs") && import_config("b.exs")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := byRule(lint(t, "config/dev.exs", tt.src), rule)
			if len(diags) != len(tt.want) {
				t.Fatalf("Expected %d diagnostics, got %d: %+v", len(tt.want), len(diags), diags)
			}
			for i, d := range diags {
				if d.Text() != tt.want[i] {
					t.Errorf("[%d] span text = %q, want %q", i, d.Text(), tt.want[i])
				}
			}
		})
	}
}

func TestLint_NoMatchingRule(t *testing.T) {
	// Rules are selected by path before parsing, so invalid code elsewhere
	// is never parsed.
	diags, err := newTestEngine(t).Lint(context.Background(), "lib/app.ex", "lib/app.ex", []byte("def broken("))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("Expected no diagnostics, got %d", len(diags))
	}
}

func TestLint_ParseError(t *testing.T) {
	_, err := newTestEngine(t).Lint(context.Background(), "config/dev.exs", "config/dev.exs", []byte("config :app, key: (\n"))
	if !errors.Is(err, cerrors.ErrParseFailed) {
		t.Errorf("Expected ErrParseFailed, got: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestLintFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "dev.exs"), "import Config\nimport_config \"dev.secrets.exs\"\nconfig :app, k: System.get_env(\"K\")\n")
	writeFile(t, filepath.Join(root, "config", "config.exs"), "import Config\nconfig :app, k: System.get_env(\"K\")\n")
	writeFile(t, filepath.Join(root, "apps", "broken", "config", "dev.exs"), "config :app, key: (\n")
	writeFile(t, filepath.Join(root, "lib", "app.ex"), "defmodule App do\nend\n")
	writeFile(t, filepath.Join(root, "deps", "dep", "config", "dev.exs"), "config :dep, k: System.get_env(\"K\")\n")
	writeFile(t, filepath.Join(root, "README.md"), "# app\n")

	files, err := Collect(root)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("Expected 4 Elixir files, got %d: %v", len(files), files)
	}

	report, err := newTestEngine(t).LintFiles(context.Background(), root, files)
	if err != nil {
		t.Fatalf("LintFiles failed: %v", err)
	}

	if report.Files != 4 || report.Rules != 3 {
		t.Errorf("Expected 4 files and 3 rules, got %d and %d", report.Files, report.Rules)
	}
	if len(report.Failures) != 1 || !errors.Is(report.Failures[0], cerrors.ErrParseFailed) {
		t.Errorf("Expected one parse failure, got %v", report.Failures)
	}

	var got []string
	for _, d := range report.Diagnostics {
		rel, _ := filepath.Rel(root, d.Path)
		got = append(got, filepath.ToSlash(rel)+":"+d.Rule)
	}
	want := []string{
		"config/config.exs:no_env_in_main_config",
		"config/dev.exs:use_import_config_with_file_exists_checking",
		"config/dev.exs:no_env_in_dev_config",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Diagnostics = %v, want %v", got, want)
	}
}

func TestRenderDiagnostic(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	src := "import Config\nconfig :app, key: System.get_env(\"KEY\")\n"
	diags := lint(t, "config/dev.exs", src)
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d", len(diags))
	}

	var buf bytes.Buffer
	if err := RenderDiagnostic(&buf, diags[0]); err != nil {
		t.Fatalf("RenderDiagnostic failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"× no_env_in_dev_config",
		"--> config/dev.exs:2:19",
		`2 | config :app, key: System.get_env("KEY")`,
		"  | " + strings.Repeat(" ", 18) + strings.Repeat("^", len(`System.get_env("KEY")`)) + " Dev config",
		"help: Use a static value",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, &Report{Files: 7, Rules: 3}); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	if !strings.Contains(buf.String(), "running 3 checks") || !strings.Contains(buf.String(), "Total files: 7") {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}
}
