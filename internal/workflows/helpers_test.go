package workflows

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/extractors"
)

type update struct {
	groupPath string
	data      map[string]string
}

// fakeStore is an in-memory SecretStore that counts calls.
type fakeStore struct {
	mu       sync.Mutex
	groups   map[string]map[string]string
	fetches  map[string]int
	updates  []update
	fetchErr error
	// groupErrs fails fetches of individual group paths.
	groupErrs map[string]error
}

func newFakeStore(groups map[string]map[string]string) *fakeStore {
	return &fakeStore{groups: groups, fetches: map[string]int{}}
}

func (s *fakeStore) FetchSecrets(_ context.Context, _, groupPath string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[groupPath]++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if err := s.groupErrs[groupPath]; err != nil {
		return nil, err
	}
	group := map[string]string{}
	for k, v := range s.groups[groupPath] {
		group[k] = v
	}
	return group, nil
}

func (s *fakeStore) UpdateSecret(_ context.Context, _, groupPath string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update{groupPath: groupPath, data: data})
	return nil
}

func (s *fakeStore) fetchCount(groupPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[groupPath]
}

// fakePrompter answers prompts from fixed values and records the questions.
type fakePrompter struct {
	choice    int
	selectErr error
	confirm   bool

	selects  [][]string
	confirms int
}

func (p *fakePrompter) Select(_ string, options []string) (int, error) {
	p.selects = append(p.selects, options)
	if p.selectErr != nil {
		return 0, p.selectErr
	}
	return p.choice, nil
}

func (p *fakePrompter) Confirm(string) (bool, error) {
	p.confirms++
	return p.confirm, nil
}

// cancelledPrompter dismisses every selection.
func cancelledPrompter() *fakePrompter {
	return &fakePrompter{selectErr: cerrors.ErrNothingSelected}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// info builds a vault:secret locator annotated in <root>/config/dev.exs.
func info(root, secretPath, name, dst string) extractors.SecretInfo {
	return extractors.SecretInfo{
		Key:             "vault:secret/" + secretPath + "#" + name,
		Provider:        extractors.ProviderBunker,
		Kind:            extractors.KindElixirConfig,
		Source:          extractors.SourceVault,
		Engine:          extractors.EngineSecret,
		SecretPath:      secretPath,
		Name:            name,
		DestinationFile: dst,
		AnnotatedFile:   filepath.Join(root, "config", "dev.exs"),
	}
}
