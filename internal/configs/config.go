package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/PolarWolf314/confvault/internal/annotations"
	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	"github.com/PolarWolf314/confvault/internal/vault"
)

// Environment variables that override the file.
const (
	EnvVaultAddr  = "CONFVAULT_VAULT_ADDR"
	EnvVaultToken = "CONFVAULT_VAULT_TOKEN"
)

// Config is the user configuration.
type Config struct {
	Vault       VaultConfig       `toml:"vault"`
	Annotations AnnotationsConfig `toml:"annotations"`
}

type VaultConfig struct {
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
	Token   string `toml:"token,omitempty"`
}

type AnnotationsConfig struct {
	Namespace string `toml:"namespace" validate:"omitempty,hostname_rfc1123"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Vault:       VaultConfig{BaseURL: vault.DefaultBaseURL},
		Annotations: AnnotationsConfig{Namespace: annotations.DefaultNamespace},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/confvault/config.toml, or the
// platform config directory when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("error getting config directory: %w", err)
		}
	}
	return filepath.Join(dir, "confvault", "config.toml"), nil
}

// Load reads the config at path and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, cerrors.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Read reads the config at path without environment overrides, as it
// should be written back by Save.
func Read(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(path, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, cerrors.ErrInvalidConfig, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if cfg.Vault.BaseURL == "" {
		cfg.Vault.BaseURL = vault.DefaultBaseURL
	}
	if cfg.Annotations.Namespace == "" {
		cfg.Annotations.Namespace = annotations.DefaultNamespace
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvVaultAddr); v != "" {
		c.Vault.BaseURL = v
	}
	if v := os.Getenv(EnvVaultToken); v != "" {
		c.Vault.Token = v
	}
}

// Save writes cfg to path with owner-only permissions, since it may hold
// a token.
func Save(path string, cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", cerrors.ErrInvalidConfig, err)
	}
	if err := SaveTOML(path, cfg); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}
