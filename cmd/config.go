package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/configs"
	"github.com/PolarWolf314/confvault/internal/utils"
)

var (
	// ConfigCmd is the top-level config command.
	ConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage confvault configuration",
		Long: `Shows the user configuration.

The user config lives at $XDG_CONFIG_HOME/confvault/config.toml unless
--config names another file. CONFVAULT_VAULT_ADDR and
CONFVAULT_VAULT_TOKEN override the file.`,
	}

	configShowJSON bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	ConfigCmd.AddCommand(configShowCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the configuration confvault uses, after environment
overrides. The token is masked.

Examples:
  confvault config show
  confvault config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")
		out := cmd.OutOrStdout()

		cfg, path, err := loadUserConfig()
		if err != nil {
			return report(out, err)
		}

		shown := *cfg
		shown.Vault.Token = utils.MaskToken(cfg.Vault.Token)

		if configShowJSON {
			data, err := json.MarshalIndent(map[string]any{
				"path":      path,
				"base_url":  shown.Vault.BaseURL,
				"token":     shown.Vault.Token,
				"namespace": shown.Annotations.Namespace,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config to JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		printConfig(out, path, &shown)
		return nil
	},
}

func printConfig(w io.Writer, path string, cfg *configs.Config) {
	token := color.YellowString(cfg.Vault.Token)
	if cfg.Vault.Token == "" {
		token = color.YellowString("(not set)")
	}

	fmt.Fprintln(w, color.CyanString("User Configuration")+" ("+path+"):")
	fmt.Fprintf(w, "  %-14s %s\n", "Vault URL:", color.GreenString(cfg.Vault.BaseURL))
	fmt.Fprintf(w, "  %-14s %s\n", "Vault Token:", token)
	fmt.Fprintf(w, "  %-14s %s\n", "Namespace:", color.GreenString(cfg.Annotations.Namespace))
}
