package ragd

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
)

const defaultTimeout = 2 * time.Minute

// Client talks to a ragd server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the given base URL, e.g. "http://localhost:3053".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ragd: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("ragd: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Chat asks a question through the named provider and returns the answer.
func (c *Client) Chat(ctx context.Context, question, provider string) (string, error) {
	var resp struct {
		Status string `json:"status"`
		Answer string `json:"answer"`
	}
	err := c.do(ctx, http.MethodPost, "/chat",
		map[string]string{"question": question, "provider": provider}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// UpsertDocument stores or replaces a document.
func (c *Client) UpsertDocument(ctx context.Context, id, content string) error {
	return c.do(ctx, http.MethodPost, "/doc/upsert",
		map[string]string{"id": id, "content": content}, nil)
}

// GetDocument fetches a document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (Document, error) {
	var doc Document
	err := c.do(ctx, http.MethodGet, "/doc/"+url.PathEscape(id), nil, &doc)
	return doc, err
}

// DeleteDocument removes a document by id.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/doc/"+url.PathEscape(id), nil, nil)
}

// ListDocumentIDs returns all stored document ids.
func (c *Client) ListDocumentIDs(ctx context.Context) ([]string, error) {
	var resp struct {
		IDs []string `json:"ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/docs/ids", nil, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// DivideParagraph splits a paragraph into titled segments.
func (c *Client) DivideParagraph(ctx context.Context, text string) ([]Segment, error) {
	var resp struct {
		Result []Segment `json:"result"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/paragraph-divide",
		map[string]string{"text": text}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// SetFanout updates the retrieval fanout (1..5) and returns the value in
// effect. n=0 reads the current value without changing it.
func (c *Client) SetFanout(ctx context.Context, n int) (int, error) {
	var resp struct {
		N int `json:"n"`
	}
	err := c.do(ctx, http.MethodPost, "/update-n", map[string]int{"n": n}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.N, nil
}

// Fanout reads the current retrieval fanout.
func (c *Client) Fanout(ctx context.Context) (int, error) {
	return c.SetFanout(ctx, 0)
}

// GetContext returns the retrieval context /chat would compose for a
// question, without calling a completion provider.
func (c *Client) GetContext(ctx context.Context, question string) (string, error) {
	var resp struct {
		Context string `json:"context"`
	}
	err := c.do(ctx, http.MethodPost, "/test/get-context",
		map[string]string{"question": question}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Context, nil
}

// Health reports whether the server and its dependencies are up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// do runs one request/response cycle. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ragd: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ragd: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ragd: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ragd: decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) == nil && payload.Code != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
