package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/ui"
	"github.com/PolarWolf314/confvault/internal/vault"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

func init() {
	devConfigCmd.AddCommand(pullCmd)
}

var pullCmd = &cobra.Command{
	Use:   "pull [path]",
	Short: "Write annotated config files from Vault",
	Long: `Finds every annotated config file under the project and writes the
stored value for each one, creating missing directories.

A secret that cannot be found, fetched or written is reported and the
pull continues; the command then exits non-zero. A rejected token stops
the pull.

Examples:
  confvault dev config pull
  confvault dev config pull apps/web`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting pull command")
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	session, err := newSyncSession(ctx, out, args)
	if err != nil {
		return report(out, err)
	}

	infos := session.found.Infos()
	Logger.Debugf("Pulling %d secrets", len(infos))

	result, err := workflows.Pull(ctx, workflows.PullOptions{
		Infos: infos,
		Store: session.store,
		Token: session.token,
		Reporter: workflows.ReporterFunc(func(entry workflows.PullEntry) {
			rel := relPath(session.root, entry.Path)
			if entry.Err != nil {
				fmt.Fprintf(out, "%s %s: %v\n", ui.Error.Sprint("✗"), ui.Path.Sprint(rel), entry.Err)
				var storeErr *vault.Error
				if errors.As(entry.Err, &storeErr) && storeErr.Hint() != "" {
					fmt.Fprintf(out, "%s %s\n", ui.Info.Sprint("→"), storeErr.Hint())
				}
				return
			}
			fmt.Fprintf(out, "%s Created %s from %s\n", ui.Success.Sprint("✓"), ui.Path.Sprint(rel), ui.Locator.Sprint(entry.Info.Locator()))
		}),
		Log: Logger,
	})
	if err != nil {
		return report(out, err)
	}

	Logger.Infof("Pull finished: %d created, %d failed", len(result.Created), len(result.Failed))
	if !result.OK() || len(session.found.Failures) > 0 {
		return ErrReported
	}
	return nil
}
