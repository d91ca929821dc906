// Package lint checks Elixir config files with structural rules.
//
// Each Rule pairs a tree-sitter query with a Go filter and names the files
// it applies to with a doublestar glob. The Engine parses a file once,
// runs every applicable rule over the same tree and turns matched nodes
// into Diagnostics whose spans are byte offsets into the exact buffer that
// was parsed.
//
// Built-in rules:
//   - no_env_in_dev_config: System.get_env and friends in config/dev.exs
//   - no_env_in_main_config: the same in config/config.exs
//   - use_import_config_with_file_exists_checking: unguarded top-level
//     import_config calls, and guards that check a different file
package lint
