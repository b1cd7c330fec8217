// Package console is the typed client for the Agentdeck REST backend: paged
// collection access, action calls and the streaming chat consumer.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agentdeck/agentdeck/internal/listkit"
)

// Client issues JSON calls against the console backend. No local cache is
// retained between calls; every list re-fetch is a fresh round trip.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token used on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New constructs a console client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("console: parse base url: %w", err)
	}
	c := &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token after a proxy login.
func (c *Client) SetToken(token string) { c.token = token }

type problemDoc struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ref := &url.URL{Path: path, RawQuery: query.Encode()}
	endpoint := c.base.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("console: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("console: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("console: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Kind:   kindForStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Title:  http.StatusText(resp.StatusCode),
		}
		var problem problemDoc
		if err := json.NewDecoder(resp.Body).Decode(&problem); err == nil && problem.Title != "" {
			apiErr.Title = problem.Title
			apiErr.Detail = problem.Detail
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("console: decode response: %w", err)
	}
	return nil
}

// TaskRef identifies a background execution started by an action endpoint.
type TaskRef struct {
	TaskID string `json:"task_id"`
}

// Token is an issued console session token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProxyLogin exchanges the console password for a bearer token and installs
// it on the client.
func (c *Client) ProxyLogin(ctx context.Context, password string) (Token, error) {
	var tok Token
	err := c.do(ctx, http.MethodPost, "/auth/proxy-login", nil, map[string]string{"password": password}, &tok)
	if err != nil {
		return Token{}, err
	}
	c.token = tok.Token
	return tok, nil
}

// ListOptions carries the pagination window plus backend-applied filters.
type ListOptions struct {
	Limit   int
	Offset  int
	Search  string
	Enabled *bool
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(o.Limit))
	v.Set("offset", strconv.Itoa(o.Offset))
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.Enabled != nil {
		v.Set("enabled", strconv.FormatBool(*o.Enabled))
	}
	return v
}

type listEnvelope[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}

// Collection provides typed access to one paged REST resource.
type Collection[T any] struct {
	client   *Client
	resource string
}

// NewCollection binds a client to a resource path segment such as "agents".
func NewCollection[T any](client *Client, resource string) *Collection[T] {
	return &Collection[T]{client: client, resource: resource}
}

// List fetches one page.
func (c *Collection[T]) List(ctx context.Context, opts ListOptions) (listkit.Page[T], error) {
	var env listEnvelope[T]
	err := c.client.do(ctx, http.MethodGet, "/"+c.resource, opts.values(), nil, &env)
	if err != nil {
		return listkit.Page[T]{}, err
	}
	return listkit.Page[T]{Items: env.Items, TotalCount: env.TotalCount}, nil
}

// Get fetches a single record.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var record T
	err := c.client.do(ctx, http.MethodGet, "/"+c.resource+"/"+id, nil, nil, &record)
	return record, err
}

// Create posts the given fields and returns the stored record. The backend
// originates the id.
func (c *Collection[T]) Create(ctx context.Context, fields any) (T, error) {
	var record T
	err := c.client.do(ctx, http.MethodPost, "/"+c.resource, nil, fields, &record)
	return record, err
}

// Update patches a record with partial fields and returns the updated record.
func (c *Collection[T]) Update(ctx context.Context, id string, partial any) (T, error) {
	var record T
	err := c.client.do(ctx, http.MethodPatch, "/"+c.resource+"/"+id, nil, partial, &record)
	return record, err
}

// Delete removes a record.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.client.do(ctx, http.MethodDelete, "/"+c.resource+"/"+id, nil, nil, nil)
}

// Action invokes an action-style endpoint (run, check, install) and returns
// the task reference.
func (c *Collection[T]) Action(ctx context.Context, id, action string) (TaskRef, error) {
	var ref TaskRef
	err := c.client.do(ctx, http.MethodPost, "/"+c.resource+"/"+id+"/"+action, nil, nil, &ref)
	return ref, err
}

// Source adapts the collection to a listkit.Source with fixed filters, so a
// list controller can drive it.
func (c *Collection[T]) Source(search string, enabled *bool) listkit.Source[T] {
	return sourceFunc[T](func(ctx context.Context, q listkit.Query) (listkit.Page[T], error) {
		return c.List(ctx, ListOptions{Limit: q.Limit, Offset: q.Offset, Search: search, Enabled: enabled})
	})
}

type sourceFunc[T any] func(ctx context.Context, q listkit.Query) (listkit.Page[T], error)

func (f sourceFunc[T]) List(ctx context.Context, q listkit.Query) (listkit.Page[T], error) {
	return f(ctx, q)
}
