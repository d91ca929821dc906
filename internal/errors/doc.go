// Package errors provides typed error values for the confvault application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Discovery errors: nothing to work on (ErrConfigNotFound)
//   - Parse errors: a file could not be read as locators (ErrParseFailed, ErrInvalidManifest)
//   - Sync errors: local and remote disagree structurally (ErrSecretNotFound)
//   - Auth errors: credentials are missing (ErrNoToken)
//
// Errors returned by the secret store client are typed separately as
// *vault.Error so callers can distinguish not-found, permission-denied and
// bad-credentials responses.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("resolving %s: %w", info.Locator(), errors.ErrSecretNotFound)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, cerrors.ErrConfigNotFound) {
//	    // Show user-friendly message
//	}
package errors
