package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/configs"
	logger "github.com/PolarWolf314/confvault/internal/logging"
)

// ErrReported is returned by commands that have already printed why they
// failed. The caller should exit non-zero without printing it again.
var ErrReported = errors.New("command failed")

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger

	RootCmd = &cobra.Command{
		Use:   "confvault",
		Short: "Sync annotated Elixir config files with Vault",
		Long: `confvault keeps local development config files in sync with secrets
stored in Vault.

Config files are found through annotations in config/dev.exs:

  # confvault.dev/config-secrets-location: vault:secret/team/dev#dev.secrets.exs
  import_config "dev.secrets.exs"

or through entries in a .confvault.toml manifest.

Usage:
  confvault <command> [flags]

Available Commands:
  dev config   Pull, push, diff and lint development config
  vault        Log in to Vault and read single secrets
  config       Show the user configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the user config file")

	RootCmd.AddCommand(DevCmd)
	RootCmd.AddCommand(VaultCmd)
	RootCmd.AddCommand(ConfigCmd)
}

// userConfigPath returns --config or the default location.
func userConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return configs.DefaultPath()
}

// loadUserConfig loads the user config named by --config.
func loadUserConfig() (*configs.Config, string, error) {
	path, err := userConfigPath()
	if err != nil {
		return nil, "", err
	}
	Logger.Debugf("Loading user config from %s", path)
	cfg, err := configs.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// ResetGlobalState resets flag variables between tests.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	Logger = logger.Logger{}
	resetDevConfigState()
	resetVaultState()
	configShowJSON = false
}
