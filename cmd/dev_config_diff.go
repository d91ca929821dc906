package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/ui"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

func init() {
	devConfigCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff [path]",
	Short: "Show how local config files differ from Vault",
	Long: `Compares every annotated config file with the value stored in Vault
and prints a unified diff for each one that differs. Nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting diff command")
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	session, err := newSyncSession(ctx, out, args)
	if err != nil {
		return report(out, err)
	}

	result, err := workflows.Diff(ctx, workflows.DiffOptions{
		Infos: session.found.Infos(),
		Store: session.store,
		Token: session.token,
		Root:  session.root,
		Out:   out,
		Log:   Logger,
	})
	if err != nil {
		return report(out, err)
	}

	if len(result.Drifted) == 0 {
		fmt.Fprintf(out, "%s %d config files match Vault\n", ui.Success.Sprint("✓"), result.Compared)
		return nil
	}
	fmt.Fprintf(out, "%s %d of %d config files differ from Vault\n", ui.Warning.Sprint("⚠"), len(result.Drifted), result.Compared)
	return nil
}
