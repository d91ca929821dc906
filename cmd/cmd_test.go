package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PolarWolf314/confvault/internal/configs"
	"github.com/PolarWolf314/confvault/internal/workflows"
)

const devConfig = `import Config

config :app, port: 4000

# confvault.dev/config-secrets-location: vault:secret/team/dev#dev.secrets.exs
import_config "dev.secrets.exs"
`

const locator = "vault:secret/team/dev#dev.secrets.exs"

// fakeVault serves the KV v2 read and merge-patch endpoints.
type fakeVault struct {
	mu      sync.Mutex
	token   string
	groups  map[string]map[string]string
	patches int
}

func (v *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if r.Header.Get("X-Vault-Token") != v.token {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"errors":["permission denied"]}`)
		return
	}

	group := strings.Replace(strings.TrimPrefix(r.URL.Path, "/v1/"), "/data/", "/", 1)
	switch r.Method {
	case http.MethodGet:
		data, ok := v.groups[group]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errors":[]}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"data": data}})
	case http.MethodPatch:
		var body struct {
			Data map[string]string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if v.groups[group] == nil {
			v.groups[group] = map[string]string{}
		}
		for k, val := range body.Data {
			v.groups[group][k] = val
		}
		v.patches++
		_, _ = io.WriteString(w, `{"data":{"version":2}}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (v *fakeVault) value(group, name string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.groups[group][name]
}

type testEnv struct {
	root   string
	config string
	vault  *fakeVault
}

// setupTestEnv creates a project with one annotated config, a fake Vault
// holding its secret and a user config pointing at it.
func setupTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv(configs.EnvVaultAddr, "")
	t.Setenv(configs.EnvVaultToken, "")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	fv := &fakeVault{
		token:  "s.good",
		groups: map[string]map[string]string{"secret/team/dev": {"dev.secrets.exs": "import Config\nconfig :app, key: \"1111\"\n"}},
	}
	srv := httptest.NewServer(fv)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "mix.exs"), "defmodule App.MixProject do\nend\n")
	writeTestFile(t, filepath.Join(root, "config", "dev.exs"), devConfig)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cfg := configs.Default()
	cfg.Vault.BaseURL = srv.URL
	cfg.Vault.Token = token
	if err := configs.Save(cfgPath, cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	return &testEnv{root: root, config: cfgPath, vault: fv}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

type answerPrompter struct {
	confirm bool
}

func (p answerPrompter) Select(string, []string) (int, error) { return 0, nil }
func (p answerPrompter) Confirm(string) (bool, error)         { return p.confirm, nil }

func usePrompter(t *testing.T, p workflows.Prompter) {
	t.Helper()
	old := prompter
	prompter = p
	t.Cleanup(func() { prompter = old })
}

func TestPull(t *testing.T) {
	env := setupTestEnv(t, "s.good")

	out, err := execute(t, "dev", "config", "pull", env.root, "--config", env.config)
	if err != nil {
		t.Fatalf("pull failed: %v\n%s", err, out)
	}

	got, err := os.ReadFile(filepath.Join(env.root, "config", "dev.secrets.exs"))
	if err != nil {
		t.Fatalf("Expected pulled file: %v", err)
	}
	if string(got) != "import Config\nconfig :app, key: \"1111\"\n" {
		t.Errorf("Unexpected content %q", got)
	}
	if !strings.Contains(out, "Created "+filepath.Join("config", "dev.secrets.exs")+" from "+locator) {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestPull_MissingSecretExitsNonZero(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	env.vault.groups["secret/team/dev"] = map[string]string{"other": "x"}

	out, err := execute(t, "dev", "config", "pull", env.root, "--config", env.config)
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(out, "✗") || !strings.Contains(out, "secret not found") {
		t.Errorf("Expected a per-entry failure, got:\n%s", out)
	}
}

func TestPull_NoToken(t *testing.T) {
	env := setupTestEnv(t, "")

	out, err := execute(t, "dev", "config", "pull", env.root, "--config", env.config)
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(out, "No Vault token configured") || !strings.Contains(out, "confvault vault login") {
		t.Errorf("Expected login hint, got:\n%s", out)
	}
}

func TestPull_PermissionDeniedHint(t *testing.T) {
	env := setupTestEnv(t, "s.other")

	out, err := execute(t, "dev", "config", "pull", env.root, "--config", env.config)
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(out, "cannot access this path") {
		t.Errorf("Expected permission hint, got:\n%s", out)
	}
}

func TestPull_NoConfigFound(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	empty := t.TempDir()
	writeTestFile(t, filepath.Join(empty, "mix.exs"), "")

	out, err := execute(t, "dev", "config", "pull", empty, "--config", env.config)
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(out, "No annotated config found") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestPull_SeveralConfigsNotice(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	writeTestFile(t, filepath.Join(env.root, "apps", "web", "config", "dev.exs"), devConfig)

	out, err := execute(t, "dev", "config", "pull", env.root, "--config", env.config)
	if err != nil {
		t.Fatalf("pull failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "There are (2) config files found!") {
		t.Errorf("Expected count notice, got:\n%s", out)
	}
}

func TestDiff(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	local := filepath.Join(env.root, "config", "dev.secrets.exs")
	writeTestFile(t, local, "import Config\nconfig :app, key: \"2222\"\n")

	out, err := execute(t, "dev", "config", "diff", env.root, "--config", env.config)
	if err != nil {
		t.Fatalf("diff failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 of 1 config files differ") {
		t.Errorf("Expected drift summary, got:\n%s", out)
	}
	if !strings.Contains(out, "{+2222+}") || !strings.Contains(out, "[-1111-]") {
		t.Errorf("Expected emphasized diff, got:\n%s", out)
	}
	if env.vault.patches != 0 {
		t.Errorf("diff must not write to Vault")
	}
}

func TestPushAndLog(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	usePrompter(t, answerPrompter{confirm: true})
	local := filepath.Join(env.root, "config", "dev.secrets.exs")
	writeTestFile(t, local, "import Config\nconfig :app, key: \"2222\"\n")

	out, err := execute(t, "dev", "config", "push", env.root, "--config", env.config)
	if err != nil {
		t.Fatalf("push failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Pushed ") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if got := env.vault.value("secret/team/dev", "dev.secrets.exs"); got != "import Config\nconfig :app, key: \"2222\"\n" {
		t.Errorf("Vault value = %q", got)
	}

	out, err = execute(t, "dev", "config", "log")
	if err != nil {
		t.Fatalf("log failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, locator) || !strings.Contains(out, "push") {
		t.Errorf("Expected push in log, got:\n%s", out)
	}
}

func TestPush_Rejected(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	usePrompter(t, answerPrompter{confirm: false})
	writeTestFile(t, filepath.Join(env.root, "config", "dev.secrets.exs"), "changed\n")

	out, err := execute(t, "dev", "config", "push", env.root, "--config", env.config)
	if err != nil {
		t.Fatalf("push failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Push cancelled") || env.vault.patches != 0 {
		t.Errorf("Expected nothing pushed, got:\n%s", out)
	}
}

func TestPush_MissingLocalHint(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	usePrompter(t, answerPrompter{confirm: true})

	out, err := execute(t, "dev", "config", "push", env.root, "--config", env.config)
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(out, "confvault dev config pull") {
		t.Errorf("Expected pull hint, got:\n%s", out)
	}
}

func TestLog_InvalidDate(t *testing.T) {
	setupTestEnv(t, "s.good")

	out, err := execute(t, "dev", "config", "log", "--since", "yesterday")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(out, "invalid date format") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestLint(t *testing.T) {
	env := setupTestEnv(t, "s.good")

	out, err := execute(t, "dev", "config", "lint", env.root)
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	for _, want := range []string{
		"× use_import_config_with_file_exists_checking",
		"--> " + filepath.Join("config", "dev.exs") + ":6:1",
		"Total files: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestLint_Clean(t *testing.T) {
	env := setupTestEnv(t, "s.good")
	writeTestFile(t, filepath.Join(env.root, "config", "dev.exs"),
		"import Config\n\nif File.exists?(\"dev.secrets.exs\") do\n  import_config \"dev.secrets.exs\"\nend\n")

	out, err := execute(t, "dev", "config", "lint", env.root)
	if err != nil {
		t.Fatalf("Expected clean lint, got %v\n%s", err, out)
	}
}

func TestVaultGet(t *testing.T) {
	env := setupTestEnv(t, "s.good")

	out, err := execute(t, "vault", "get", locator, "--config", env.config)
	if err != nil {
		t.Fatalf("vault get failed: %v\n%s", err, out)
	}
	if out != "import Config\nconfig :app, key: \"1111\"\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestVaultGet_InvalidLocator(t *testing.T) {
	env := setupTestEnv(t, "s.good")

	tests := []string{"secret/team/dev#x", "aws:secret/team/dev#x", "vault:secret#x"}
	for _, loc := range tests {
		t.Run(loc, func(t *testing.T) {
			out, err := execute(t, "vault", "get", loc, "--config", env.config)
			if !errors.Is(err, ErrReported) {
				t.Fatalf("Expected ErrReported, got %v", err)
			}
			if !strings.Contains(out, "invalid secret locator") {
				t.Errorf("Unexpected output:\n%s", out)
			}
		})
	}
}

func TestConfigShow_MasksToken(t *testing.T) {
	env := setupTestEnv(t, "s.abcdef1234")

	out, err := execute(t, "config", "show", "--config", env.config)
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "s.abcdef1234") {
		t.Errorf("Token must be masked:\n%s", out)
	}
	if !strings.Contains(out, "********1234") {
		t.Errorf("Expected masked token, got:\n%s", out)
	}
}
