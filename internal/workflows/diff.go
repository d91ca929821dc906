package workflows

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/PolarWolf314/confvault/internal/diff"
	"github.com/PolarWolf314/confvault/internal/extractors"
	logger "github.com/PolarWolf314/confvault/internal/logging"
	"github.com/PolarWolf314/confvault/internal/vault"
)

// maxConcurrentCompares bounds in-flight store requests during diff.
const maxConcurrentCompares = 4

// DiffOptions configures the diff workflow.
type DiffOptions struct {
	Infos []extractors.SecretInfo
	Store vault.SecretStore
	Token string

	// Root is the directory diff titles are relative to.
	Root string
	Out  io.Writer
	Log  logger.Logger
}

// DiffResult contains the outcome of a diff operation.
type DiffResult struct {
	Compared int
	Drifted  []*Comparison
}

// Diff renders every local file that differs from the store. It never
// writes locally or remotely.
//
// Returns ErrLocalConfigNotFound if an annotated file is missing locally.
// Returns ErrSecretNotFound if the store lacks a value for an annotation.
func Diff(ctx context.Context, opts DiffOptions) (*DiffResult, error) {
	resolver := NewSharedResolver(opts.Store, opts.Token)
	comparisons := make([]*Comparison, len(opts.Infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCompares)
	for i, info := range opts.Infos {
		g.Go(func() error {
			cmp, err := resolver.Compare(gctx, info)
			if err != nil {
				return err
			}
			comparisons[i] = cmp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	result := &DiffResult{Compared: len(comparisons)}
	for _, cmp := range comparisons {
		if !cmp.Drifted {
			opts.Log.Debugf("%s is up to date", cmp.Info.LocalPath())
			continue
		}
		result.Drifted = append(result.Drifted, cmp)

		title := fmt.Sprintf("%s (%s)", relativePath(opts.Root, cmp.Info.LocalPath()), cmp.Info.Locator())
		if err := diff.Render(out, title, cmp.Remote, cmp.Local); err != nil {
			return nil, fmt.Errorf("rendering diff: %w", err)
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return nil, err
		}
	}
	return result, nil
}
