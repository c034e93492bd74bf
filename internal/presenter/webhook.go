package presenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// NameWebhook identifies the webhook presenter in config and metrics.
const NameWebhook = "webhook"

const defaultWebhookTimeout = 5 * time.Second

// ErrWebhookURL is returned when the webhook presenter is enabled without a target.
var ErrWebhookURL = errors.New("webhook url is required")

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// WebhookPayload is the JSON body posted for each increase.
type WebhookPayload struct {
	Kind     domain.Kind `json:"kind"`
	Count    int         `json:"count"`
	Previous int         `json:"previous"`
	Delta    int         `json:"delta"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	At       time.Time   `json:"at"`
}

// WebhookPresenter POSTs each increase as JSON. Deliveries are paced by a token bucket.
type WebhookPresenter struct {
	url     string
	client  httpDoer
	limiter *rate.Limiter
}

// NewWebhookPresenter builds a presenter posting to url at most perSecond times a second
// (burst perSecond). A non-positive perSecond disables pacing.
func NewWebhookPresenter(url string, perSecond int, client *http.Client) (*WebhookPresenter, error) {
	if url == "" {
		return nil, ErrWebhookURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultWebhookTimeout}
	}
	var limiter *rate.Limiter
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
	return &WebhookPresenter{url: url, client: client, limiter: limiter}, nil
}

func (p *WebhookPresenter) Name() string { return NameWebhook }

func (p *WebhookPresenter) Present(ctx context.Context, inc domain.Increase) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("webhook rate limit: %w", err)
		}
	}

	body, err := json.Marshal(WebhookPayload{
		Kind:     inc.Kind,
		Count:    inc.Count,
		Previous: inc.Previous,
		Delta:    inc.Delta(),
		Title:    title,
		Message:  Message(inc),
		At:       inc.At,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
