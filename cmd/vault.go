package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/confvault/internal/annotations"
	"github.com/PolarWolf314/confvault/internal/configs"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
	"github.com/PolarWolf314/confvault/internal/ui"
	"github.com/PolarWolf314/confvault/internal/utils"
)

var (
	// VaultCmd groups commands that talk to Vault directly.
	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Log in to Vault and read single secrets",
	}

	loginCheck string
)

func init() {
	vaultLoginCmd.Flags().StringVar(&loginCheck, "check", "", "read this locator with the token before saving it")
	VaultCmd.AddCommand(vaultLoginCmd)
	VaultCmd.AddCommand(vaultGetCmd)
}

// resetVaultState resets vault flags for testing.
func resetVaultState() {
	loginCheck = ""
}

var vaultLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Vault token in the user config",
	Long: `Reads a Vault token without echoing it and stores it in the user
config file. The token can also be piped:

  vault print token | confvault vault login

With --check the token is first used to read the given locator and is
only saved if the read succeeds.`,
	Args: cobra.NoArgs,
	RunE: runVaultLogin,
}

func runVaultLogin(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting vault login command")
	out := cmd.OutOrStdout()

	path, err := userConfigPath()
	if err != nil {
		return report(out, err)
	}
	cfg, err := configs.Read(path)
	if err != nil {
		return report(out, err)
	}

	var token []byte
	if utils.IsTerminal() {
		token, err = utils.ReadPassphrase("Vault token: ")
	} else {
		Logger.Debugf("Reading token from stdin")
		token, err = utils.ReadStdin()
	}
	if err != nil {
		return report(out, err)
	}
	if len(token) == 0 {
		return report(out, cerrors.ErrNoToken)
	}

	if loginCheck != "" {
		loc, err := parseVaultLocator(loginCheck)
		if err != nil {
			return report(out, err)
		}
		store := newStore(cfg)
		if _, err := store.FetchSecrets(cmd.Context(), string(token), loc.GroupPath()); err != nil {
			return report(out, err)
		}
		Logger.Infof("Token can read %s", loc.GroupPath())
	}

	cfg.Vault.Token = string(token)
	if err := configs.Save(path, cfg); err != nil {
		return report(out, err)
	}
	fmt.Fprintf(out, "%s Token %s saved to %s\n", ui.Success.Sprint("✓"), utils.MaskToken(cfg.Vault.Token), ui.Path.Sprint(path))
	return nil
}

var vaultGetCmd = &cobra.Command{
	Use:   "get <locator>",
	Short: "Print one secret value",
	Long: `Prints the value stored under a locator such as

  vault:secret/team/dev#dev.secrets.exs

The value is written verbatim, without a trailing newline.`,
	Args: cobra.ExactArgs(1),
	RunE: runVaultGet,
}

func runVaultGet(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting vault get command")
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	loc, err := parseVaultLocator(args[0])
	if err != nil {
		return report(errOut, err)
	}
	cfg, _, err := loadUserConfig()
	if err != nil {
		return report(errOut, err)
	}
	token, err := requireToken(cfg)
	if err != nil {
		return report(errOut, err)
	}

	value, err := newStore(cfg).GetSecret(cmd.Context(), token, loc.GroupPath(), loc.Name)
	if err != nil {
		return report(errOut, err)
	}
	_, err = fmt.Fprint(out, value)
	return err
}

// parseVaultLocator accepts only vault locators.
func parseVaultLocator(value string) (annotations.Locator, error) {
	loc, err := annotations.ParseLocator(value)
	if err != nil {
		return annotations.Locator{}, err
	}
	if loc.Source != extractors.SourceVault {
		return annotations.Locator{}, fmt.Errorf("%w: unsupported source %q", cerrors.ErrInvalidLocator, loc.Source)
	}
	return loc, nil
}
