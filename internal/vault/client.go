package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cerrors "github.com/PolarWolf314/confvault/internal/errors"
	logger "github.com/PolarWolf314/confvault/internal/logging"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is used when neither the config file nor the environment
// names a server.
const DefaultBaseURL = "http://127.0.0.1:8200"

// SecretStore is the remote store the sync workflows talk to.
type SecretStore interface {
	// FetchSecrets returns every name/value pair stored under groupPath.
	FetchSecrets(ctx context.Context, token, groupPath string) (map[string]string, error)
	// UpdateSecret merges data into the group at groupPath.
	UpdateSecret(ctx context.Context, token, groupPath string, data map[string]string) error
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	RetryMax int
	Timeout  time.Duration
	Log      logger.Logger
}

// Client talks to the Vault KV v2 HTTP API.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

var _ SecretStore = (*Client)(nil)

// NewClient builds a client. Server errors and connection failures are
// retried up to RetryMax times; the last response is always returned to
// the caller so it can be classified.
func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{opts.Log}
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}

	return &Client{baseURL: base, http: rc}
}

type fetchResponse struct {
	Data struct {
		Data map[string]any `json:"data"`
	} `json:"data"`
}

// FetchSecrets reads a group with GET /v1/<engine>/data/<path>.
func (c *Client) FetchSecrets(ctx context.Context, token, groupPath string) (map[string]string, error) {
	body, err := c.do(ctx, http.MethodGet, token, groupPath, nil, "")
	if err != nil {
		return nil, err
	}

	var resp fetchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding vault response for %s: %w", groupPath, err)
	}

	secrets := make(map[string]string, len(resp.Data.Data))
	for name, v := range resp.Data.Data {
		switch value := v.(type) {
		case string:
			secrets[name] = value
		default:
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("decoding %s in %s: %w", name, groupPath, err)
			}
			secrets[name] = string(raw)
		}
	}
	return secrets, nil
}

// UpdateSecret sends a JSON merge patch, so names absent from data keep
// their stored values.
func (c *Client) UpdateSecret(ctx context.Context, token, groupPath string, data map[string]string) error {
	payload, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return fmt.Errorf("encoding update for %s: %w", groupPath, err)
	}
	_, err = c.do(ctx, http.MethodPatch, token, groupPath, payload, "application/merge-patch+json")
	return err
}

// GetSecret returns one value from a group.
func (c *Client) GetSecret(ctx context.Context, token, groupPath, name string) (string, error) {
	secrets, err := c.FetchSecrets(ctx, token, groupPath)
	if err != nil {
		return "", err
	}
	value, ok := secrets[name]
	if !ok {
		return "", fmt.Errorf("%s#%s: %w", groupPath, name, cerrors.ErrSecretNotFound)
	}
	return value, nil
}

func (c *Client) do(ctx context.Context, method, token, groupPath string, payload []byte, contentType string) ([]byte, error) {
	if token == "" {
		return nil, cerrors.ErrNoToken
	}

	var reqBody any
	if payload != nil {
		reqBody = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url(groupPath), reqBody)
	if err != nil {
		return nil, fmt.Errorf("building vault request: %w", err)
	}
	req.Header.Set("X-Vault-Token", token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault %s %s: %w", method, groupPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading vault response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classify(groupPath, resp.StatusCode, body)
	}
	return body, nil
}

// url maps secret/team/dev onto <base>/v1/secret/data/team/dev.
func (c *Client) url(groupPath string) string {
	engine, path, _ := strings.Cut(strings.Trim(groupPath, "/"), "/")
	return fmt.Sprintf("%s/v1/%s/data/%s", c.baseURL, engine, path)
}

// leveledLogger routes retry chatter to the debug log.
type leveledLogger struct {
	log logger.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.log.Errorf("%s%s", msg, fields(kv)) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.log.Debugf("%s%s", msg, fields(kv)) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.log.Debugf("%s%s", msg, fields(kv)) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.log.Warnf("%s%s", msg, fields(kv)) }

func fields(kv []any) string {
	var b bytes.Buffer
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
