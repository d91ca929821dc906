package extractors

import (
	"context"

	"github.com/PolarWolf314/confvault/internal/annotations"
)

// ElixirConfigExtractor reads annotations from config/dev.exs files.
type ElixirConfigExtractor struct {
	Parser *annotations.Parser
}

// NewElixirConfigExtractor builds an extractor for the given annotation namespace.
func NewElixirConfigExtractor(namespace string) (*ElixirConfigExtractor, error) {
	p, err := annotations.NewParser(namespace)
	if err != nil {
		return nil, err
	}
	return &ElixirConfigExtractor{Parser: p}, nil
}

// Extract keeps vault:secret annotations under the parser's key. The Raw
// locator becomes the SecretInfo key.
func (e *ElixirConfigExtractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	found, err := e.Parser.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &Extraction{}
	for _, a := range found {
		if a.Key != e.Parser.Key() {
			continue
		}
		if a.Source != SourceVault || a.Engine != EngineSecret {
			result.Skipped = append(result.Skipped, Skip{
				File:   path,
				Entry:  a.Raw,
				Reason: "only vault:secret locators are supported",
			})
			continue
		}
		result.Infos = append(result.Infos, SecretInfo{
			Key:             a.Raw,
			Provider:        ProviderBunker,
			Kind:            KindElixirConfig,
			Source:          a.Source,
			Engine:          a.Engine,
			SecretPath:      a.SecretPath,
			Name:            a.SecretName,
			DestinationFile: a.DestinationFile,
			AnnotatedFile:   path,
		})
	}
	return result, nil
}
