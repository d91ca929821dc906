package configs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/confvault/internal/annotations"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/vault"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvVaultAddr, "")
	t.Setenv(EnvVaultToken, "")
}

func TestLoadNonExistent(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Vault.BaseURL != vault.DefaultBaseURL {
		t.Errorf("Expected default base URL, got %q", cfg.Vault.BaseURL)
	}
	if cfg.Annotations.Namespace != annotations.DefaultNamespace {
		t.Errorf("Expected default namespace, got %q", cfg.Annotations.Namespace)
	}
	if cfg.Vault.Token != "" {
		t.Errorf("Expected no token, got %q", cfg.Vault.Token)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := &Config{
		Vault:       VaultConfig{BaseURL: "https://vault.example.com", Token: "s.abc"},
		Annotations: AnnotationsConfig{Namespace: "example.com"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Loaded %+v, want %+v", loaded, cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[vault]\ntoken = \"s.abc\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Vault.Token != "s.abc" || cfg.Vault.BaseURL != vault.DefaultBaseURL {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Annotations.Namespace != annotations.DefaultNamespace {
		t.Errorf("Expected default namespace, got %q", cfg.Annotations.Namespace)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[vault]\nbase_url = \"http://file:8200\"\ntoken = \"from-file\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVaultAddr, "http://env:8200")
	t.Setenv(EnvVaultToken, "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Vault.BaseURL != "http://env:8200" || cfg.Vault.Token != "from-env" {
		t.Errorf("Expected environment to win, got %+v", cfg.Vault)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", "[vault\nbase_url = "},
		{"unknown key", "[vault]\naddress = \"http://x\"\n"},
		{"bad url", "[vault]\nbase_url = \"not a url\"\n"},
		{"bad namespace", "[annotations]\nnamespace = \"has space\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, cerrors.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if want := filepath.Join(dir, "confvault", "config.toml"); path != want {
		t.Errorf("Expected %q, got %q", want, path)
	}
}

func TestReadIgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[vault]\ntoken = \"from-file\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVaultToken, "from-env")

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if cfg.Vault.Token != "from-file" {
		t.Errorf("Expected file token, got %q", cfg.Vault.Token)
	}
}
