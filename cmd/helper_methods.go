package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"

	"github.com/PolarWolf314/confvault/internal/configs"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
	"github.com/PolarWolf314/confvault/internal/ui"
	"github.com/PolarWolf314/confvault/internal/utils"
	"github.com/PolarWolf314/confvault/internal/vault"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

// storeRetries is how often a failed store request is retried.
const storeRetries = 2

// startSpinner creates and starts a spinner unless verbose or debug output
// is enabled. The returned cleanup stops it and prints FinalMSG, which
// needs no trailing newline.
func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// newStore builds the Vault client for cfg.
func newStore(cfg *configs.Config) *vault.Client {
	Logger.Debugf("Using Vault at %s", cfg.Vault.BaseURL)
	return vault.NewClient(vault.Options{
		BaseURL:  cfg.Vault.BaseURL,
		RetryMax: storeRetries,
		Timeout:  30 * time.Second,
		Log:      Logger,
	})
}

// projectRoot resolves the optional path argument to a project root.
func projectRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", dir, cerrors.ErrPathNotFound)
		}
	}
	root, err := utils.ResolveRoot(dir)
	if err != nil {
		return "", err
	}
	Logger.Debugf("Project root: %s", root)
	return root, nil
}

// discoverProject finds every secret under root.
func discoverProject(ctx context.Context, root string, cfg *configs.Config) (*workflows.DiscoverResult, error) {
	sc, err := workflows.NewScanner(cfg.Annotations.Namespace)
	if err != nil {
		return nil, err
	}

	result, err := workflows.Discover(ctx, root, sc)
	if err != nil {
		return nil, err
	}
	Logger.Infof("Scanned %d files, %d with secrets", result.Scanned, len(result.Files))
	return result, nil
}

// printDiscovery reports skipped entries, unreadable files and the number
// of config files found.
func printDiscovery(w io.Writer, root string, result *workflows.DiscoverResult) {
	for _, skip := range result.Skipped {
		fmt.Fprintf(w, "%s Ignoring %s\n", ui.Warning.Sprint("⚠"), skipLabel(root, skip))
	}
	for _, f := range result.Failures {
		fmt.Fprintf(w, "%s %s\n", ui.Error.Sprint("✗"), relError(root, f))
	}

	if n := len(result.Files); n > 1 {
		fmt.Fprintf(w, "There are (%d) config files found!\n", n)
		if verbose || debug {
			paths := make([]string, n)
			for i, f := range result.Files {
				paths[i] = relPath(root, f.Path)
			}
			Logger.Infof("Config files:%s", utils.FormatPaths(paths))
		}
	}
}

func skipLabel(root string, skip extractors.Skip) string {
	return fmt.Sprintf("%s in %s: %s", ui.Highlight.Sprint(skip.Entry), ui.Path.Sprint(relPath(root, skip.File)), skip.Reason)
}

func relError(root string, f workflows.FileError) string {
	return fmt.Sprintf("%s: %v", ui.Path.Sprint(relPath(root, f.Path)), f.Err)
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

// requireToken returns the configured token or ErrNoToken.
func requireToken(cfg *configs.Config) (string, error) {
	if cfg.Vault.Token == "" {
		return "", cerrors.ErrNoToken
	}
	return cfg.Vault.Token, nil
}

// formatError renders err for the user, with a remediation hint when one
// is known.
func formatError(err error) string {
	fail := ui.Error.Sprint("✗") + " "
	hint := func(msg string) string {
		return "\n" + ui.Info.Sprint("→") + " " + msg
	}

	var storeErr *vault.Error
	switch {
	case errors.As(err, &storeErr):
		msg := fail + storeErr.Error()
		if h := storeErr.Hint(); h != "" {
			msg += hint(h)
		}
		return msg

	case errors.Is(err, cerrors.ErrNoToken):
		return fail + "No Vault token configured" +
			hint("Run "+ui.Code.Sprint("confvault vault login")+" or set "+ui.Code.Sprint(configs.EnvVaultToken))

	case errors.Is(err, cerrors.ErrLocalConfigNotFound):
		return fail + err.Error() +
			hint("Run "+ui.Code.Sprint("confvault dev config pull")+" to create it first")

	case errors.Is(err, cerrors.ErrSecretNotFound):
		return fail + err.Error() +
			hint("Check the secret name after # in the annotation or manifest entry")

	case errors.Is(err, cerrors.ErrConfigNotFound):
		return fail + "No annotated config found" +
			hint("Annotate an "+ui.Code.Sprint("import_config")+" in config/dev.exs or add a "+ui.Path.Sprint(extractors.ManifestFileName))

	case errors.Is(err, cerrors.ErrPathNotFound):
		return fail + err.Error()

	case errors.Is(err, cerrors.ErrInvalidConfig):
		return fail + err.Error() +
			hint("Fix the file or pass another one with "+ui.Code.Sprint("--config"))

	case errors.Is(err, cerrors.ErrNotInteractive):
		return fail + "This command needs an interactive terminal"

	case errors.Is(err, cerrors.ErrInvalidLocator):
		return fail + err.Error() +
			hint("Locators look like "+ui.Locator.Sprint("vault:secret/team/dev#dev.secrets.exs"))

	default:
		return fail + err.Error()
	}
}

// report prints err and returns ErrReported.
func report(w io.Writer, err error) error {
	fmt.Fprintln(w, formatError(err))
	Logger.Debugf("Error detail: %+v", err)
	return ErrReported
}
