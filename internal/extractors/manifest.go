package extractors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/PolarWolf314/confvault/internal/annotations"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/go-playground/validator/v10"
)

// ManifestFileName is the per-directory secrets manifest.
const ManifestFileName = ".confvault.toml"

// manifest mirrors .confvault.toml:
//
//	[[secrets]]
//	[secrets.dotenv]
//	provider = "bunker"
//	kind = "generic"
//	src = "vault:secret/team/development#dotenv"
//	dst = ".env"
type manifest struct {
	Secrets []map[string]ManifestEntry `toml:"secrets"`
}

// ManifestEntry is one named table under [[secrets]].
type ManifestEntry struct {
	Provider string `toml:"provider" validate:"required"`
	Kind     string `toml:"kind" validate:"required"`
	Src      string `toml:"src" validate:"required"`
	Dst      string `toml:"dst" validate:"required,projectpath"`
}

// ManifestExtractor reads .confvault.toml files.
type ManifestExtractor struct {
	validate *validator.Validate
}

// NewManifestExtractor returns an extractor with its validator configured.
func NewManifestExtractor() *ManifestExtractor {
	v := validator.New()
	_ = v.RegisterValidation("projectpath", func(fl validator.FieldLevel) bool {
		return insideProject(fl.Field().String())
	})
	return &ManifestExtractor{validate: v}
}

// Extract decodes the manifest and converts every acceptable entry. Invalid
// TOML or a missing secrets array fails the whole file.
func (e *ManifestExtractor) Extract(_ context.Context, path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, cerrors.ErrInvalidManifest, err)
	}
	if !md.IsDefined("secrets") {
		return nil, fmt.Errorf("%s: %w: missing [[secrets]] array", path, cerrors.ErrInvalidManifest)
	}

	result := &Extraction{}
	for _, table := range m.Secrets {
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			info, reason := e.convert(path, key, table[key])
			if reason != "" {
				result.Skipped = append(result.Skipped, Skip{File: path, Entry: key, Reason: reason})
				continue
			}
			result.Infos = append(result.Infos, info)
		}
	}
	return result, nil
}

// convert returns the SecretInfo for entry, or a non-empty skip reason.
func (e *ManifestExtractor) convert(path, key string, entry ManifestEntry) (SecretInfo, string) {
	if err := e.validate.Struct(entry); err != nil {
		return SecretInfo{}, validationReason(entry, err)
	}
	if entry.Provider != ProviderBunker || entry.Kind != KindGeneric {
		return SecretInfo{}, fmt.Sprintf("unsupported provider/kind %s/%s", entry.Provider, entry.Kind)
	}

	loc, err := annotations.ParseLocator(entry.Src)
	if err != nil {
		return SecretInfo{}, err.Error()
	}
	if loc.Source != SourceVault || loc.Engine != EngineSecret {
		return SecretInfo{}, fmt.Sprintf("unsupported locator %s", loc)
	}

	return SecretInfo{
		Key:             key,
		Provider:        entry.Provider,
		Kind:            entry.Kind,
		Source:          loc.Source,
		Engine:          loc.Engine,
		SecretPath:      loc.Path,
		Name:            loc.Name,
		DestinationFile: entry.Dst,
		AnnotatedFile:   path,
	}, ""
}

func validationReason(entry ManifestEntry, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing %s", strings.ToLower(fe.Field())))
		case "projectpath":
			msgs = append(msgs, fmt.Sprintf("dst %s is not under the project directory", entry.Dst))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(msgs, ", ")
}

func insideProject(dst string) bool {
	return !strings.HasPrefix(dst, "~/") && !strings.HasPrefix(dst, "/") && !filepath.IsAbs(dst)
}
