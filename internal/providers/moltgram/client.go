package moltgram

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/providers"
)

// Config controls how the client reaches a MoltGram instance.
type Config struct {
	BaseURL           string
	Token             string
	NotificationsPath string
	MessagesPath      string

	// CountField is a gjson path into the response body; "count" for the stock endpoints.
	CountField string
	HTTPClient *http.Client
}

// Client reads unread counts from the MoltGram HTTP API.
type Client struct {
	baseURL    string
	token      string
	paths      map[domain.Kind]string
	countField string
	httpClient httpDoer
}

// NewClient constructs a MoltGram client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		token:      cfg.Token,
		paths:      resolvePaths(cfg.NotificationsPath, cfg.MessagesPath),
		countField: resolveCountField(cfg.CountField),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
	}
}

// FetchCount issues GET <base><path(kind)> and returns the non-negative integer at the count field.
func (c *Client) FetchCount(ctx context.Context, kind domain.Kind) (int, error) {
	path, ok := c.paths[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	req, err := c.buildRequest(ctx, path)
	if err != nil {
		return 0, &providers.FetchError{Kind: kind, Reason: providers.ReasonNetwork, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &providers.FetchError{Kind: kind, Reason: providers.ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &providers.FetchError{
			Kind:       kind,
			Reason:     providers.ReasonStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, &providers.FetchError{Kind: kind, Reason: providers.ReasonNetwork, Err: err}
	}

	count, err := c.parseCount(body)
	if err != nil {
		return 0, &providers.FetchError{Kind: kind, Reason: providers.ReasonMalformed, StatusCode: resp.StatusCode, Err: err}
	}
	return count, nil
}

func (c *Client) buildRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) parseCount(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("invalid json body")
	}
	field := gjson.GetBytes(body, c.countField)
	if !field.Exists() {
		return 0, fmt.Errorf("missing %q in body", c.countField)
	}
	if field.Type != gjson.Number {
		return 0, fmt.Errorf("%q is %s, want number", c.countField, field.Type)
	}
	n := field.Float()
	if n < 0 || n != math.Trunc(n) || n >= 1<<63 {
		return 0, fmt.Errorf("%q = %s is not a non-negative integer", c.countField, field.Raw)
	}
	// Int reads the raw literal, so counts above 2^53 keep their exact value.
	v := field.Int()
	if v < 0 || int64(int(v)) != v {
		return 0, fmt.Errorf("%q = %s does not fit in an int", c.countField, field.Raw)
	}
	return int(v), nil
}
