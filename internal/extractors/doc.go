// Package extractors turns project files into SecretInfo records.
//
// Two sources are supported: annotated config/dev.exs files, read through
// the annotations package, and .confvault.toml manifests. Both implement
// Extractor. Entries that cannot be used are not errors; they are
// reported in Extraction.Skipped so the caller can warn about them.
package extractors
