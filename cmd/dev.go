package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PolarWolf314/confvault/internal/configs"
	"github.com/PolarWolf314/confvault/internal/vault"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

var (
	// DevCmd groups development workflow commands.
	DevCmd = &cobra.Command{
		Use:   "dev",
		Short: "Development workflow commands",
	}

	devConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "Sync and check development config files",
		Long: `Keeps annotated development config files in sync with Vault.

Examples:
  # Write every annotated config file from Vault
  confvault dev config pull

  # Show what differs between local files and Vault
  confvault dev config diff

  # Send one changed file back to Vault
  confvault dev config push

  # Check config files for common mistakes
  confvault dev config lint`,
	}
)

func init() {
	DevCmd.AddCommand(devConfigCmd)
}

// resetDevConfigState resets dev config flags between tests.
func resetDevConfigState() {
	resetLogCommandState()
	for _, c := range devConfigCmd.Commands() {
		c.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Changed = false
		})
	}
}

// syncSession is what pull, push and diff share: the project, its
// secrets and a store to compare them with.
type syncSession struct {
	cfg   *configs.Config
	root  string
	found *workflows.DiscoverResult
	store vault.SecretStore
	token string
}

// newSyncSession loads the user config, discovers the project under the
// optional path argument and prints what discovery skipped.
func newSyncSession(ctx context.Context, w io.Writer, args []string) (*syncSession, error) {
	cfg, _, err := loadUserConfig()
	if err != nil {
		return nil, err
	}
	root, err := projectRoot(args)
	if err != nil {
		return nil, err
	}

	spinner, cleanup := startSpinner("Looking for annotated config files...")
	found, err := discoverProject(ctx, root, cfg)
	spinner.FinalMSG = ""
	cleanup()
	if err != nil {
		return nil, err
	}
	printDiscovery(w, root, found)

	token, err := requireToken(cfg)
	if err != nil {
		return nil, err
	}

	return &syncSession{
		cfg:   cfg,
		root:  root,
		found: found,
		store: newStore(cfg),
		token: token,
	}, nil
}
