package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/audit"
	"github.com/PolarWolf314/confvault/internal/ui"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

func init() {
	devConfigCmd.AddCommand(pushCmd)
}

var pushCmd = &cobra.Command{
	Use:   "push [path]",
	Short: "Send one changed config file to Vault",
	Long: `Compares every annotated config file with Vault. If one differs, its
diff is shown and, once confirmed, the local content replaces the stored
value. With several changed files you pick one; each push sends a single
file.

Confirmed pushes are recorded in the audit log (see ` + "`confvault dev config log`" + `).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting push command")
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	session, err := newSyncSession(ctx, out, args)
	if err != nil {
		return report(out, err)
	}

	result, err := workflows.Push(ctx, workflows.PushOptions{
		Infos:    session.found.Infos(),
		Store:    session.store,
		Token:    session.token,
		Prompter: prompter,
		Root:     session.root,
		Out:      out,
		Audit:    auditTrail(),
		Log:      Logger,
	})
	if err != nil {
		return report(out, err)
	}

	switch result.Status {
	case workflows.PushUpToDate:
		fmt.Fprintf(out, "%s Everything is up to date\n", ui.Success.Sprint("✓"))
	case workflows.PushCancelled:
		fmt.Fprintf(out, "%s No file selected, nothing pushed\n", ui.Info.Sprint("ℹ"))
	case workflows.PushRejected:
		fmt.Fprintf(out, "%s Push cancelled\n", ui.Info.Sprint("ℹ"))
	case workflows.PushPushed:
		info := result.Pushed.Info
		fmt.Fprintf(out, "%s Pushed %s to %s\n", ui.Success.Sprint("✓"),
			ui.Path.Sprint(relPath(session.root, info.LocalPath())), ui.Locator.Sprint(info.Locator()))
		if result.Drifted > 1 {
			fmt.Fprintf(out, "%s %d more changed files; run push again to send them\n", ui.Info.Sprint("→"), result.Drifted-1)
		}
	}
	return nil
}

// prompter asks push questions. Tests replace it.
var prompter workflows.Prompter = ui.TerminalPrompter{}

// auditTrail returns the default audit trail. Without a state directory
// pushes are not recorded.
func auditTrail() audit.Trail {
	path, err := audit.DefaultPath()
	if err != nil {
		Logger.Warnf("Audit log disabled: %v", err)
		return audit.Trail{}
	}
	Logger.Debugf("Audit log: %s", path)
	return audit.Trail{Path: path}
}
