package contentlake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lakesync/internal/core/domain"
	"github.com/custodia-labs/lakesync/internal/core/ports/driven"
	"github.com/custodia-labs/lakesync/internal/logger"
)

const (
	// RequestRate is the proactive request throttle, in requests per second.
	RequestRate = 5

	// MaxRetries is the maximum number of consecutive listen reconnects.
	MaxRetries = 3

	// RetryDelay is the initial delay between listen reconnects.
	RetryDelay = time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Ensure Client implements the interface.
var _ driven.ContentClient = (*Client)(nil)

// Client talks to the export and listen endpoints of one dataset.
type Client struct {
	cfg        Config
	http       *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewClient creates a client for cfg. When cfg.Token is set every request
// carries it as a bearer token.
func NewClient(cfg Config) *Client {
	httpClient := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return NewClientWithHTTPClient(cfg, httpClient)
}

// NewClientWithHTTPClient creates a client with a custom http.Client.
// The export and listen responses are long-lived streams, so httpClient
// should not set a Timeout.
func NewClientWithHTTPClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:        cfg,
		http:       httpClient,
		limiter:    rate.NewLimiter(rate.Limit(RequestRate), 1),
		retryDelay: RetryDelay,
	}
}

// ExportStream opens the dataset export. The caller must close the body.
func (c *Client) ExportStream(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.get(ctx, c.cfg.ExportURL(), "application/x-ndjson")
	if err != nil {
		if IsNotFound(err) {
			var apiErr *APIError
			errors.As(err, &apiErr)
			apiErr.Message = fmt.Sprintf("%s - %s", apiErr.Message, notFoundHint)
		}
		return nil, err
	}
	return resp.Body, nil
}

// Listen subscribes to mutations of documents matching query. tag labels
// the request for diagnostics. Events are delivered in the order received;
// the event channel is closed when the subscription ends and at most one
// error is sent before the error channel closes. Dropped connections are
// retried with backoff; channel errors and disconnect requests are not.
func (c *Client) Listen(ctx context.Context, query, tag string) (<-chan domain.ListenerEvent, <-chan error) {
	events := make(chan domain.ListenerEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		delay := c.retryDelay
		attempts := 0
		for {
			welcomed, err := c.listenOnce(ctx, query, tag, events)
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			if welcomed {
				attempts, delay = 0, c.retryDelay
			}
			attempts++
			if !isRetryable(err) || attempts > MaxRetries {
				errs <- err
				return
			}

			logger.Warn("Listener connection lost (%v), reconnecting in %s", err, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
		}
	}()

	return events, errs
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// listenOnce holds one listen connection open until it ends. welcomed
// reports whether the server acknowledged the subscription.
func (c *Client) listenOnce(
	ctx context.Context, query, tag string, out chan<- domain.ListenerEvent,
) (welcomed bool, err error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("includeResult", "true")
	if tag != "" {
		params.Set("tag", tag)
	}

	resp, err := c.get(ctx, c.cfg.ListenURL()+"?"+params.Encode(), "text/event-stream")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	err = readEvents(resp.Body, func(ev sseEvent) error {
		switch ev.Event {
		case "welcome":
			welcomed = true
			logger.Debug("Listener subscribed (tag %s)", tag)
			return nil

		case "mutation":
			var event domain.ListenerEvent
			if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
				logger.Debug("Ignoring undecodable mutation event %s: %v", ev.ID, err)
				return nil
			}
			if event.EventID == "" {
				event.EventID = ev.ID
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- event:
				return nil
			}

		case "channelError":
			return fmt.Errorf("%w: %s", ErrChannel, eventMessage(ev.Data))

		case "disconnect":
			return fmt.Errorf("%w: %s", ErrDisconnected, eventMessage(ev.Data))

		default:
			return nil
		}
	})
	return welcomed, err
}

// get issues a throttled GET and converts non-2xx responses to *APIError.
func (c *Client) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", redact(rawURL), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Status, body),
			URL:        redact(rawURL),
		}
	}
	return resp, nil
}

// errorMessage extracts the message of a JSON error body, falling back to
// the HTTP status text.
func errorMessage(status string, body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		var text string
		if json.Unmarshal(payload.Error, &text) == nil && text != "" {
			return text
		}
		var nested struct {
			Description string `json:"description"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Description != "" {
			return nested.Description
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 200 {
		return msg
	}
	return status
}

// eventMessage extracts the message of a channelError or disconnect event.
func eventMessage(data string) string {
	var payload struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Reason != "" {
			return payload.Reason
		}
	}
	return data
}

// redact drops the query string, which may carry the listen filter.
func redact(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
