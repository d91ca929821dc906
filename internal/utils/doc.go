// Package utils provides small helpers shared by the commands.
//
// # Filesystem
//
//   - FindProjectRoot: walks up to the nearest mix.exs or .confvault.toml
//   - ResolveRoot: the project root, or the directory itself
//
// # Terminal and I/O
//
//   - ReadPassphrase: reads a token without echo
//   - ReadStdin: reads a piped token
//
// # Strings
//
//   - FormatPaths, MaskToken
package utils
