package ui

import (
	"errors"
	"fmt"
	"os"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// TerminalPrompter asks questions on the controlling terminal.
type TerminalPrompter struct {
	// Accessible renders prompts as plain line-based questions, for screen
	// readers and dumb terminals.
	Accessible bool
}

// Select shows options and returns the chosen index. A dismissed prompt
// returns ErrNothingSelected.
func (p TerminalPrompter) Select(title string, options []string) (int, error) {
	if err := requireTerminal(); err != nil {
		return 0, err
	}

	opts := make([]huh.Option[int], len(options))
	for i, label := range options {
		opts[i] = huh.NewOption(label, i)
	}

	choice := 0
	field := huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(&choice)
	err := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.Accessible).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return 0, cerrors.ErrNothingSelected
	}
	if err != nil {
		return 0, fmt.Errorf("select prompt: %w", err)
	}
	return choice, nil
}

// Confirm asks a yes/no question that defaults to no.
func (p TerminalPrompter) Confirm(title string) (bool, error) {
	if err := requireTerminal(); err != nil {
		return false, err
	}

	agreed := false
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&agreed)
	err := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.Accessible).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return agreed, nil
}

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cerrors.ErrNotInteractive
	}
	return nil
}
