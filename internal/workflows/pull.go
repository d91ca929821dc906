package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
	logger "github.com/PolarWolf314/confvault/internal/logging"
	"github.com/PolarWolf314/confvault/internal/vault"
)

// PullEntry is the outcome for one secret.
type PullEntry struct {
	Info extractors.SecretInfo
	Path string
	Err  error
}

// Reporter receives each pull outcome as soon as it is known.
type Reporter interface {
	Report(entry PullEntry)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(PullEntry)

func (f ReporterFunc) Report(entry PullEntry) { f(entry) }

// PullOptions configures the pull workflow.
type PullOptions struct {
	Infos []extractors.SecretInfo
	Store vault.SecretStore
	Token string

	// Reporter is optional.
	Reporter Reporter
	Log      logger.Logger
}

// PullResult contains the outcome of a pull operation.
type PullResult struct {
	Created []PullEntry
	Failed  []PullEntry
}

// OK reports whether every secret was written.
func (r *PullResult) OK() bool {
	return len(r.Failed) == 0
}

// Pull writes every stored value to its local path verbatim, creating
// parent directories as needed. Each group is fetched once.
//
// A missing value, a group the store refuses or lacks, and a failed write
// are recorded in PullResult.Failed and the pull continues. Rejected
// credentials, transport errors and cancellation abort it.
func Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	resolver := NewResolver(opts.Store, opts.Token)
	result := &PullResult{}

	report := func(entry PullEntry) {
		if entry.Err != nil {
			result.Failed = append(result.Failed, entry)
		} else {
			result.Created = append(result.Created, entry)
		}
		if opts.Reporter != nil {
			opts.Reporter.Report(entry)
		}
	}

	for _, info := range opts.Infos {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := info.LocalPath()
		opts.Log.Debugf("Pulling %s into %s", info.Locator(), path)

		value, err := resolver.Value(ctx, info)
		if err != nil {
			if abortsPull(err) {
				return result, err
			}
			report(PullEntry{Info: info, Path: path, Err: err})
			continue
		}

		if err := writeSecret(path, value); err != nil {
			report(PullEntry{Info: info, Path: path, Err: err})
			continue
		}
		report(PullEntry{Info: info, Path: path})
	}

	return result, nil
}

// abortsPull reports whether err affects every entry rather than one group.
func abortsPull(err error) bool {
	if errors.Is(err, cerrors.ErrSecretNotFound) {
		return false
	}
	var storeErr *vault.Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind == vault.KindBadCredentials
	}
	return true
}

func writeSecret(path, value string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	// #nosec G306 -- secrets are only readable by the owner.
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
