package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/PolarWolf314/confvault/internal/diff"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
	"github.com/PolarWolf314/confvault/internal/vault"
)

// Resolver fetches secret groups, at most once per group path. A Resolver
// lives for one command invocation.
type Resolver struct {
	store vault.SecretStore
	token string

	mu     sync.Mutex
	groups map[string]groupResult

	// flight is set for resolvers shared between goroutines.
	flight *singleflight.Group
}

type groupResult struct {
	secrets map[string]string
	err     error
}

// NewResolver returns a resolver for sequential use.
func NewResolver(store vault.SecretStore, token string) *Resolver {
	return &Resolver{store: store, token: token, groups: map[string]groupResult{}}
}

// NewSharedResolver returns a resolver that is safe for concurrent use.
// Concurrent requests for the same group share one fetch.
func NewSharedResolver(store vault.SecretStore, token string) *Resolver {
	r := NewResolver(store, token)
	r.flight = &singleflight.Group{}
	return r
}

// Group returns every value under groupPath.
func (r *Resolver) Group(ctx context.Context, groupPath string) (map[string]string, error) {
	if res, ok := r.cached(groupPath); ok {
		return res.secrets, res.err
	}

	if r.flight == nil {
		return r.fetch(ctx, groupPath)
	}
	v, err, _ := r.flight.Do(groupPath, func() (any, error) {
		if res, ok := r.cached(groupPath); ok {
			return res.secrets, res.err
		}
		return r.fetch(ctx, groupPath)
	})
	secrets, _ := v.(map[string]string)
	return secrets, err
}

func (r *Resolver) cached(groupPath string) (groupResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.groups[groupPath]
	return res, ok
}

func (r *Resolver) fetch(ctx context.Context, groupPath string) (map[string]string, error) {
	secrets, err := r.store.FetchSecrets(ctx, r.token, groupPath)
	// Cancellation is not remembered; a later call may still succeed.
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, err
	}
	r.mu.Lock()
	r.groups[groupPath] = groupResult{secrets: secrets, err: err}
	r.mu.Unlock()
	return secrets, err
}

// Value returns the stored value for info.
//
// Returns ErrSecretNotFound if the group has no value under info.Name.
func (r *Resolver) Value(ctx context.Context, info extractors.SecretInfo) (string, error) {
	secrets, err := r.Group(ctx, info.GroupPath())
	if err != nil {
		return "", err
	}
	value, ok := secrets[info.Name]
	if !ok {
		return "", fmt.Errorf("%s: %w", info.Locator(), cerrors.ErrSecretNotFound)
	}
	return value, nil
}

// Comparison is a local file checked against its stored value.
type Comparison struct {
	Info    extractors.SecretInfo
	Local   string
	Remote  string
	Drifted bool
}

// Compare reads the local copy of info and compares it with the store.
//
// Returns ErrLocalConfigNotFound if the local file does not exist.
// Returns ErrSecretNotFound if the store has no value for info.
func (r *Resolver) Compare(ctx context.Context, info extractors.SecretInfo) (*Comparison, error) {
	path := info.LocalPath()
	local, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s (%s): %w", path, info.Locator(), cerrors.ErrLocalConfigNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	remote, err := r.Value(ctx, info)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Info:    info,
		Local:   string(local),
		Remote:  remote,
		Drifted: diff.HasDiff(remote, string(local)),
	}, nil
}
