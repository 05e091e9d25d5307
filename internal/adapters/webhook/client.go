// internal/adapters/webhook/client.go
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"estates_console/internal/adapters/observability"
	"estates_console/internal/domain"
)

// DefaultTimeout tolerates a cold-started webhook host.
const DefaultTimeout = 10 * time.Second

const maxBody = 8 << 20

type Endpoints struct {
	List   string
	Create string
	Update string
	Delete string
}

// Client talks to the four listing webhooks. Every call is a single
// attempt bounded by the configured timeout.
type Client struct {
	urls    Endpoints
	hc      *http.Client
	timeout time.Duration
	rl      *rate.Limiter
}

func New(urls Endpoints, timeout time.Duration, rps int) (*Client, error) {
	if urls.List == "" || urls.Create == "" || urls.Update == "" || urls.Delete == "" {
		return nil, fmt.Errorf("all four webhook URLs are required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		urls:    urls,
		hc:      &http.Client{},
		timeout: timeout,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// List fetches the full collection. Any decode problem is reported as
// ErrUnrecognizedShape; the caller decides whether to fall back.
func (c *Client) List(ctx context.Context) ([]domain.Listing, error) {
	d, err := c.ListDecoded(ctx)
	if err != nil {
		return nil, err
	}
	return d.Listings, nil
}

func (c *Client) ListDecoded(ctx context.Context) (Decoded, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.urls.List, nil)
	if err != nil {
		return Decoded{}, err
	}
	return DecodeListings(body)
}

func (c *Client) Create(ctx context.Context, l domain.Listing) error {
	_, err := c.do(ctx, "create", http.MethodPost, c.urls.Create, l)
	return err
}

func (c *Client) Update(ctx context.Context, l domain.Listing) error {
	_, err := c.do(ctx, "update", http.MethodPost, c.urls.Update, l)
	return err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodPost, c.urls.Delete, map[string]string{"id": id})
	return err
}

// ---- Internals ----

// do is the bounded-time wrapper: it derives a deadline from the client
// timeout, waits on the rate limiter inside that deadline, and maps a
// deadline hit to domain.ErrTimeout.
func (c *Client) do(ctx context.Context, endpoint, method, url string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	status := 0
	defer func() { observability.ObserveExternal("webhook", endpoint, status, time.Since(start)) }()

	if err := c.rl.Wait(ctx); err != nil {
		return nil, c.wrapCtx(ctx, endpoint, err)
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("webhook %s: encode: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "estates-console/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, c.wrapCtx(ctx, endpoint, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, c.wrapCtx(ctx, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(b))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &domain.StatusError{Endpoint: "webhook " + endpoint, Code: resp.StatusCode, Body: snippet}
	}
	return b, nil
}

func (c *Client) wrapCtx(ctx context.Context, endpoint string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("webhook %s after %s: %w", endpoint, c.timeout, domain.ErrTimeout)
	}
	return fmt.Errorf("webhook %s: %w", endpoint, err)
}
