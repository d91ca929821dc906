package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/audit"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/ui"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

var (
	logLimit   int
	logReverse bool
	logLocator string
	logSince   string
	logUntil   string
	logJSON    bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logLocator, "locator", "", "filter by locator substring")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")

	devConfigCmd.AddCommand(logCmd)
}

// resetLogCommandState resets the log command's flags for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logLocator = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of pushes",
	Long: `Displays every confirmed push recorded in the audit log.

Examples:
  confvault dev config log                         # Full history
  confvault dev config log -n 10                   # Last 10 entries
  confvault dev config log --reverse               # Most recent first
  confvault dev config log --locator secret/team   # Filter by locator
  confvault dev config log --since 2026-01-01      # Filter by date
  confvault dev config log --json                  # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")
	out := cmd.OutOrStdout()

	trail := auditTrail()
	if trail.Path == "" {
		fmt.Fprintf(out, "%s No audit log location available\n", ui.Info.Sprint("ℹ"))
		return nil
	}

	result, err := workflows.Log(cmd.Context(), workflows.LogOptions{
		Trail:   trail,
		Limit:   logLimit,
		Reverse: logReverse,
		Locator: logLocator,
		Since:   logSince,
		Until:   logUntil,
	})
	if err != nil {
		if errors.Is(err, cerrors.ErrInvalidDateFormat) {
			fmt.Fprintf(out, "%s %v\n", ui.Error.Sprint("✗"), err)
			return ErrReported
		}
		return report(out, err)
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if logJSON {
		return outputLogJSON(out, result.Entries)
	}

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Fprintln(out, "No pushes recorded yet.")
		} else {
			fmt.Fprintln(out, "No pushes match the filters.")
		}
		return nil
	}

	for _, e := range result.Entries {
		fmt.Fprintf(out, "%-19s  %-6s  %s  %s\n",
			workflows.FormatDateTime(e.Timestamp), e.Operation, ui.Locator.Sprint(e.Locator), ui.Path.Sprint(e.File))
	}
	return nil
}

func outputLogJSON(w io.Writer, entries []audit.Entry) error {
	if entries == nil {
		entries = []audit.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
