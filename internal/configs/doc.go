// Package configs loads the confvault user configuration.
//
// The config lives at $XDG_CONFIG_HOME/confvault/config.toml:
//
//	[vault]
//	base_url = "http://127.0.0.1:8200"
//	token = "..."
//
//	[annotations]
//	namespace = "confvault.dev"
//
// A missing file is not an error; Load returns the defaults. The
// CONFVAULT_VAULT_ADDR and CONFVAULT_VAULT_TOKEN environment variables
// override the file. Save writes the file with mode 0600.
package configs
