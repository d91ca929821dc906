package utils

import (
	"fmt"
	"os"

	"golang.org/x/term"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
)

// ReadPassphrase prompts on stderr and reads a line from the terminal
// without echoing it.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read token: %w", cerrors.ErrNotInteractive)
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	return passphrase, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
