package errors

import "errors"

// Discovery errors indicate that no usable configuration could be located.
var (
	// ErrConfigNotFound indicates no annotated config or manifest was found.
	ErrConfigNotFound = errors.New("no annotated config found")

	// ErrPathNotFound indicates the project path passed on the command line does not exist.
	ErrPathNotFound = errors.New("path does not exist")
)

// Parse errors indicate that a source file could not be turned into locators.
var (
	// ErrParseFailed indicates the source could not be parsed into a syntax tree.
	ErrParseFailed = errors.New("failed to parse source")

	// ErrInvalidManifest indicates a manifest is not valid TOML or lacks the secrets array.
	ErrInvalidManifest = errors.New("invalid secrets manifest")

	// ErrInvalidLocator indicates a locator string does not follow <source>:<engine>/<path>#<name>.
	ErrInvalidLocator = errors.New("invalid secret locator")
)

// Sync errors indicate an inconsistency between local files and the secret store.
var (
	// ErrSecretNotFound indicates the resolved group has no value under the locator's name.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrLocalConfigNotFound indicates the destination file of a locator does not exist locally.
	ErrLocalConfigNotFound = errors.New("local config file not found")

	// ErrNothingSelected indicates the user dismissed the selection prompt.
	ErrNothingSelected = errors.New("no selection made")
)

// Input errors indicate invalid command-line values.
var (
	// ErrInvalidDateFormat indicates a date filter is not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// Auth errors indicate issues with credentials for the secret store.
var (
	// ErrNoToken indicates no secret store token is configured.
	ErrNoToken = errors.New("no vault token configured")

	// ErrNotInteractive indicates a prompt was required but stdin is not a terminal.
	ErrNotInteractive = errors.New("stdin is not a terminal")
)

// Config errors indicate a user config file that cannot be used.
var (
	// ErrInvalidConfig indicates the user config is not valid TOML or holds invalid values.
	ErrInvalidConfig = errors.New("invalid user config")
)
