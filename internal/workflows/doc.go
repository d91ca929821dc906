// Package workflows provides high-level orchestration for confvault commands.
//
// Workflows coordinate discovery, the secret store and the diff engine to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Builds the store client, scanner and prompter
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else. Nothing is read from package-level
// state; every collaborator arrives through an Options struct.
//
// # Available Workflows
//
//   - Discover: Finds annotated config/dev.exs files and .confvault.toml manifests
//   - Pull: Writes every stored value to its local file
//   - Push: Sends one changed local file back to the store, after confirmation
//   - Diff: Shows how local files differ from the store
//   - Log: Reads the push history
//
// # Secret Resolution
//
// A Resolver is created per invocation and fetches each group path at most
// once. Diff compares files concurrently through a shared resolver, which
// collapses simultaneous fetches of one group into a single request.
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, and
// *vault.Error for store failures, allowing the CLI layer to provide
// appropriate user-facing messages without string matching:
//
//	result, err := workflows.Push(ctx, opts)
//	if errors.Is(err, cerrors.ErrLocalConfigNotFound) {
//	    // Suggest running pull first
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// This enables cancellation, timeouts, and passing request-scoped values.
package workflows
