package workflows

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
)

// Discovery globs, relative to the project root.
const (
	ElixirConfigGlob = "**/config/dev.exs"
	ManifestGlob     = "**/" + extractors.ManifestFileName
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"_build":       true,
	"deps":         true,
	"node_modules": true,
}

// Scanner pairs each discovery glob with the extractor for it.
type Scanner struct {
	Elixir   extractors.Extractor
	Manifest extractors.Extractor
}

// NewScanner builds the default scanner for an annotation namespace.
func NewScanner(namespace string) (Scanner, error) {
	elixir, err := extractors.NewElixirConfigExtractor(namespace)
	if err != nil {
		return Scanner{}, err
	}
	return Scanner{Elixir: elixir, Manifest: extractors.NewManifestExtractor()}, nil
}

// ConfigFile is a discovered file with at least one secret.
type ConfigFile struct {
	Path  string
	Infos []extractors.SecretInfo
}

// FileError is a file that could not be extracted.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// DiscoverResult contains the outcome of a project scan.
type DiscoverResult struct {
	// Files holds every file with at least one usable secret, sorted by path.
	Files []ConfigFile

	// Scanned is the number of files that matched a discovery glob.
	Scanned int

	// Skipped lists entries that were ignored with a reason.
	Skipped []extractors.Skip

	// Failures lists files that could not be read or parsed.
	Failures []FileError
}

// Infos returns every secret across all files in path order.
func (r *DiscoverResult) Infos() []extractors.SecretInfo {
	var out []extractors.SecretInfo
	for _, f := range r.Files {
		out = append(out, f.Infos...)
	}
	return out
}

// Discover walks root for config/dev.exs files and manifests and extracts
// their secrets. A file that fails does not stop the others.
//
// Returns ErrPathNotFound if root does not exist.
// Returns ErrConfigNotFound if no file matches the discovery globs.
func Discover(ctx context.Context, root string, sc Scanner) (*DiscoverResult, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", root, cerrors.ErrPathNotFound)
		}
		return nil, fmt.Errorf("checking %s: %w", root, err)
	}

	type candidate struct {
		path      string
		extractor extractors.Extractor
	}
	var candidates []candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case matches(ElixirConfigGlob, rel) && sc.Elixir != nil:
			candidates = append(candidates, candidate{path, sc.Elixir})
		case matches(ManifestGlob, rel) && sc.Manifest != nil:
			candidates = append(candidates, candidate{path, sc.Manifest})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", root, cerrors.ErrConfigNotFound)
	}

	result := &DiscoverResult{Scanned: len(candidates)}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		extraction, err := c.extractor.Extract(ctx, c.path)
		if err != nil {
			result.Failures = append(result.Failures, FileError{Path: c.path, Err: err})
			continue
		}
		result.Skipped = append(result.Skipped, extraction.Skipped...)
		if len(extraction.Infos) > 0 {
			result.Files = append(result.Files, ConfigFile{Path: c.path, Infos: extraction.Infos})
		}
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	return result, nil
}

func matches(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}
