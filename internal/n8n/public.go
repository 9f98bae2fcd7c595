package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/virtualxperience/n8nsync/internal/config"
	"github.com/virtualxperience/n8nsync/internal/creds"
	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	logger "github.com/virtualxperience/n8nsync/internal/logging"
)

const (
	publicCredentialsPath = "/api/v1/credentials"
	publicSchemaPath      = "/api/v1/credentials/schema"

	apiKeyHeader = "X-N8N-API-KEY"
)

// PublicClient talks to the public /api/v1 surface, which authenticates with
// an API key instead of basic auth. Credential creation goes through here
// because the public API runs the payload through the instance's own
// validation and re-encrypts the data with the target's key.
type PublicClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logger.Logger
}

// NewPublicClient builds a public API client for the target described by cfg.
func NewPublicClient(cfg config.Config, log logger.Logger) (*PublicClient, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", cfg.BaseURL, err)
	}

	return &PublicClient{
		baseURL: u,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &apiKeyTransport{
				key:  cfg.APIKey,
				next: http.DefaultTransport,
			},
		},
		log: log,
	}, nil
}

// apiKeyTransport injects the API key header and the JSON content headers on
// every request.
type apiKeyTransport struct {
	key  string
	next http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(apiKeyHeader, t.key)
	clone.Header.Set("Accept", "application/json")
	clone.Header.Set("Content-Type", "application/json")
	clone.Header.Set("User-Agent", userAgent)
	return t.next.RoundTrip(clone)
}

// CredentialSchema fetches the field schema for one credential type.
func (c *PublicClient) CredentialSchema(ctx context.Context, credType string) (*creds.Schema, error) {
	body, err := c.do(ctx, http.MethodGet, publicSchemaPath+"/"+url.PathEscape(credType), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching schema for %s: %w", credType, err)
	}

	var schema creds.Schema
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, fmt.Errorf("fetching schema for %s: decoding response: %v", credType, err)
	}
	return &schema, nil
}

// CreateCredential posts one plaintext credential. The public API has no
// update route, so every call creates a new credential on the target.
func (c *PublicClient) CreateCredential(ctx context.Context, payload json.RawMessage) error {
	if _, err := c.do(ctx, http.MethodPost, publicCredentialsPath, payload); err != nil {
		return fmt.Errorf("creating credential: %w", err)
	}
	return nil
}

func (c *PublicClient) do(ctx context.Context, method, path string, body json.RawMessage) ([]byte, error) {
	u := *c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}

	c.log.Debugf("%s %s", method, u.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", syncerrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", syncerrors.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(data))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", syncerrors.ErrRemoteUnavailable, method, u.Path, resp.StatusCode, detail)
	}
	return data, nil
}
