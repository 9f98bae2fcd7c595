// Package n8n implements the HTTP client for the n8n REST API.
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
	"time"

	"github.com/virtualxperience/n8nsync/internal/config"
	syncerrors "github.com/virtualxperience/n8nsync/internal/errors"
	logger "github.com/virtualxperience/n8nsync/internal/logging"
	"github.com/virtualxperience/n8nsync/internal/record"
	"github.com/virtualxperience/n8nsync/internal/syncer"
)

// Compile-time interface satisfaction check.
var _ syncer.API = (*Client)(nil)

const (
	healthPath      = "/healthz"
	workflowsPath   = "/rest/workflows"
	credentialsPath = "/rest/credentials"

	userAgent      = "n8nsync/1.0"
	requestTimeout = 30 * time.Second
)

// kindRoute describes how one record kind maps onto the REST surface.
// Workflows are replaced wholesale with PUT; credentials are updated with
// PATCH, and their reads must ask for the (encrypted) data blob explicitly.
type kindRoute struct {
	path         string
	updateMethod string
	query        url.Values
}

func routeFor(kind record.Kind) (kindRoute, error) {
	switch kind {
	case record.KindWorkflow:
		return kindRoute{path: workflowsPath, updateMethod: http.MethodPut}, nil
	case record.KindCredential:
		return kindRoute{
			path:         credentialsPath,
			updateMethod: http.MethodPatch,
			query:        url.Values{"includeData": []string{"true"}},
		}, nil
	default:
		return kindRoute{}, fmt.Errorf("unknown record kind %q", kind)
	}
}

// Client talks to one n8n instance over basic auth. All methods take a
// context and perform a single request; nothing is cached between calls.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     logger.Logger
}

// NewClient builds a client for the target described by cfg.
func NewClient(cfg config.Config, log logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", cfg.BaseURL, err)
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &basicAuthTransport{
				user:     cfg.User,
				password: cfg.Password,
				next:     http.DefaultTransport,
			},
		},
		log: log,
	}, nil
}

// basicAuthTransport injects the basic auth header and the JSON content
// headers on every request.
type basicAuthTransport struct {
	user     string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.user, t.password)
	clone.Header.Set("Accept", "application/json")
	clone.Header.Set("Content-Type", "application/json")
	clone.Header.Set("User-Agent", userAgent)
	return t.next.RoundTrip(clone)
}

// Health issues the lightweight readiness probe. Any transport error or
// non-2xx status means the instance is not (yet) ready.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, healthPath, nil, nil)
	return err
}

// List returns the metadata-only catalog of remote records of the given
// kind. Full payloads are deliberately not transferred here.
func (c *Client) List(ctx context.Context, kind record.Kind) ([]record.Summary, error) {
	route, err := routeFor(kind)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodGet, route.path, route.query, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", kind, err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(unwrapData(body), &elements); err != nil {
		return nil, fmt.Errorf("listing %ss: decoding response: %w", kind, err)
	}

	summaries := make([]record.Summary, 0, len(elements))
	for _, element := range elements {
		rec, err := record.Parse(element)
		if err != nil {
			return nil, fmt.Errorf("listing %ss: %w", kind, err)
		}
		summaries = append(summaries, record.Summary{ID: rec.ID, Name: rec.Name})
	}
	return summaries, nil
}

// Get fetches the full payload of one remote record.
func (c *Client) Get(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	route, err := routeFor(kind)
	if err != nil {
		return record.Record{}, err
	}

	body, err := c.do(ctx, http.MethodGet, route.path+"/"+url.PathEscape(id), route.query, nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("fetching %s %s: %w", kind, id, err)
	}

	rec, err := record.Parse(unwrapData(body))
	if err != nil {
		return record.Record{}, fmt.Errorf("fetching %s %s: %w", kind, id, err)
	}
	return rec, nil
}

// Create posts a new record; the remote assigns the id and returns the
// created body.
func (c *Client) Create(ctx context.Context, kind record.Kind, payload json.RawMessage) (record.Record, error) {
	route, err := routeFor(kind)
	if err != nil {
		return record.Record{}, err
	}

	body, err := c.do(ctx, http.MethodPost, route.path, nil, payload)
	if err != nil {
		return record.Record{}, fmt.Errorf("creating %s: %w", kind, err)
	}

	rec, err := record.Parse(unwrapData(body))
	if err != nil {
		return record.Record{}, fmt.Errorf("creating %s: decoding response: %w", kind, err)
	}
	return rec, nil
}

// Update replaces the remote record's payload with the local one.
func (c *Client) Update(ctx context.Context, kind record.Kind, id string, payload json.RawMessage) error {
	route, err := routeFor(kind)
	if err != nil {
		return err
	}

	if _, err := c.do(ctx, route.updateMethod, route.path+"/"+url.PathEscape(id), nil, payload); err != nil {
		return fmt.Errorf("updating %s %s: %w", kind, id, err)
	}
	return nil
}

// do performs one request and returns the response body. Transport failures
// and non-2xx statuses are both reported as the remote being unavailable;
// callers decide whether that is fatal (catalog reads) or per-record
// (upserts).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body json.RawMessage) ([]byte, error) {
	// JoinPath keeps pre-escaped id segments intact; assigning to u.Path
	// directly would re-encode the percent signs.
	u := *c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

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

// unwrapData strips the {"data": ...} envelope some n8n API versions wrap
// around list and detail responses. A bare credential body also carries a
// top-level "data" key (the encrypted blob string), so the envelope is only
// recognized when its value is a container and the body does not itself look
// like a record: a record always has an id, an envelope never does.
func unwrapData(body []byte) json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}
	data, ok := envelope["data"]
	if !ok {
		return body
	}

	_, hasID := envelope["id"]
	switch firstToken(data) {
	case '[':
		return data
	case '{':
		if !hasID {
			return data
		}
	default:
		if len(envelope) == 1 {
			return data
		}
	}
	return body
}

// firstToken returns the first non-whitespace byte of a JSON value, or 0.
func firstToken(raw []byte) byte {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
		default:
			return c
		}
	}
	return 0
}
