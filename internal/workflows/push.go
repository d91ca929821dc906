package workflows

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/PolarWolf314/confvault/internal/audit"
	"github.com/PolarWolf314/confvault/internal/diff"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
	logger "github.com/PolarWolf314/confvault/internal/logging"
	"github.com/PolarWolf314/confvault/internal/vault"
)

// Prompter asks the user to choose and to confirm. ui.TerminalPrompter
// is the interactive implementation.
type Prompter interface {
	// Select returns the index of the chosen option, or ErrNothingSelected.
	Select(title string, options []string) (int, error)
	// Confirm asks a yes/no question that defaults to no.
	Confirm(title string) (bool, error)
}

// PushStatus is how a push ended.
type PushStatus int

const (
	// PushUpToDate means no local file differs from the store.
	PushUpToDate PushStatus = iota
	// PushCancelled means the selection prompt was dismissed.
	PushCancelled
	// PushRejected means the user declined the confirmation.
	PushRejected
	// PushPushed means exactly one value was sent to the store.
	PushPushed
)

// Prompt titles.
const (
	SelectTitle  = "Which one do you like to push the changes?"
	ConfirmTitle = "Confirm this change & push?"
)

// PushOptions configures the push workflow.
type PushOptions struct {
	Infos    []extractors.SecretInfo
	Store    vault.SecretStore
	Token    string
	Prompter Prompter

	// Root is the directory selection labels are relative to.
	Root string

	// Out receives the diff of the chosen entry. Nil discards it.
	Out   io.Writer
	Audit audit.Trail
	Log   logger.Logger
}

// PushResult contains the outcome of a push operation.
type PushResult struct {
	Status PushStatus

	// Drifted is the number of local files that differ from the store.
	Drifted int

	// Pushed is set when Status is PushPushed.
	Pushed *Comparison
}

// Push sends at most one changed local file to the store. With several
// drifted files the user picks one. Nothing is sent without confirmation.
//
// Returns ErrLocalConfigNotFound if an annotated file is missing locally.
// Returns ErrSecretNotFound if the store lacks a value for an annotation.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	resolver := NewResolver(opts.Store, opts.Token)

	var drifted []*Comparison
	for _, info := range opts.Infos {
		cmp, err := resolver.Compare(ctx, info)
		if err != nil {
			return nil, err
		}
		if cmp.Drifted {
			drifted = append(drifted, cmp)
		}
	}

	result := &PushResult{Drifted: len(drifted)}
	if len(drifted) == 0 {
		result.Status = PushUpToDate
		return result, nil
	}

	chosen := drifted[0]
	if len(drifted) > 1 {
		labels := make([]string, len(drifted))
		for i, cmp := range drifted {
			labels[i] = SelectLabel(opts.Root, cmp.Info)
		}
		idx, err := opts.Prompter.Select(SelectTitle, labels)
		if errors.Is(err, cerrors.ErrNothingSelected) {
			result.Status = PushCancelled
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(drifted) {
			return nil, fmt.Errorf("selection %d out of range", idx)
		}
		chosen = drifted[idx]
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	title := relativePath(opts.Root, chosen.Info.LocalPath())
	if err := diff.Render(out, title, chosen.Remote, chosen.Local); err != nil {
		return nil, fmt.Errorf("rendering diff: %w", err)
	}

	ok, err := opts.Prompter.Confirm(ConfirmTitle)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Status = PushRejected
		return result, nil
	}

	data := map[string]string{chosen.Info.Name: chosen.Local}
	if err := opts.Store.UpdateSecret(ctx, opts.Token, chosen.Info.GroupPath(), data); err != nil {
		return nil, err
	}

	if err := opts.Audit.Append(audit.Entry{
		Operation: "push",
		Locator:   chosen.Info.Locator().String(),
		File:      chosen.Info.LocalPath(),
		Bytes:     len(chosen.Local),
	}); err != nil {
		opts.Log.Warnf("Could not record push in audit log: %v", err)
	}

	result.Status = PushPushed
	result.Pushed = chosen
	return result, nil
}

// SelectLabel is the option shown for info in the push selection.
func SelectLabel(root string, info extractors.SecretInfo) string {
	return fmt.Sprintf("%s %s", relativePath(root, info.LocalPath()), info.Locator())
}

func relativePath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
