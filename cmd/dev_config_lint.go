package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/lint"
)

func init() {
	devConfigCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Check Elixir config files for common mistakes",
	Long: `Checks the Elixir sources under the project with structural rules:

  no_env_in_dev_config                          environment reads in config/dev.exs
  no_env_in_main_config                         environment reads in config/config.exs
  use_import_config_with_file_exists_checking   unguarded import_config in config/dev.exs

Exits non-zero when any rule is violated or a file cannot be parsed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting lint command")
	out := cmd.OutOrStdout()

	root, err := projectRoot(args)
	if err != nil {
		return report(out, err)
	}

	start := time.Now()
	rules, err := lint.DefaultRules()
	if err != nil {
		return report(out, err)
	}
	engine := lint.NewEngine(rules...)
	files, err := lint.Collect(root)
	if err != nil {
		return report(out, err)
	}
	loadTime := time.Since(start)
	Logger.Debugf("Loaded %d rules and %d files in %v", len(rules), len(files), loadTime)

	result, err := engine.LintFiles(cmd.Context(), root, files)
	if err != nil {
		return report(out, err)
	}
	result.LoadTime = loadTime

	for i, d := range result.Diagnostics {
		result.Diagnostics[i].Path = relPath(root, d.Path)
	}
	for i, f := range result.Failures {
		result.Failures[i].Path = relPath(root, f.Path)
	}

	if err := lint.RenderReport(out, result); err != nil {
		return err
	}
	if err := lint.RenderSummary(out, result); err != nil {
		return err
	}

	if len(result.Diagnostics) > 0 || len(result.Failures) > 0 {
		return ErrReported
	}
	return nil
}
