package extractors

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/confvault/internal/annotations"
)

// Providers and kinds understood by the sync commands.
const (
	ProviderBunker   = "bunker"
	KindGeneric      = "generic"
	KindElixirConfig = "elixir_config"

	SourceVault  = "vault"
	EngineSecret = "secret"
)

// SecretInfo describes one local file whose content lives in the secret store.
type SecretInfo struct {
	Key      string
	Provider string
	Kind     string

	Source     string
	Engine     string
	SecretPath string
	Name       string

	// DestinationFile is relative to the directory of AnnotatedFile.
	DestinationFile string
	AnnotatedFile   string
}

// GroupPath is the store path holding the secret, e.g. secret/team/dev.
func (s SecretInfo) GroupPath() string {
	return s.Locator().GroupPath()
}

// Locator returns the store locator of the secret.
func (s SecretInfo) Locator() annotations.Locator {
	return annotations.Locator{Source: s.Source, Engine: s.Engine, Path: s.SecretPath, Name: s.Name}
}

// LocalPath resolves DestinationFile against the annotated file's directory.
func (s SecretInfo) LocalPath() string {
	return filepath.Join(filepath.Dir(s.AnnotatedFile), s.DestinationFile)
}

// Skip records an entry that was ignored and why.
type Skip struct {
	File   string
	Entry  string
	Reason string
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: %s: %s", s.File, s.Entry, s.Reason)
}

// Extraction is the result of extracting one file.
type Extraction struct {
	Infos   []SecretInfo
	Skipped []Skip
}

// Extractor turns one project file into secret locators. A returned error
// is fatal for the file; entries that are merely malformed end up in
// Extraction.Skipped.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Extraction, error)
}
