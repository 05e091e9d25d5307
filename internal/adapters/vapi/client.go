// internal/adapters/vapi/client.go
package vapi

import (
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

const DefaultBase = "https://api.vapi.ai"

var (
	ErrUnauthorized = errors.New("vapi: unauthorized")
	ErrMissingKey   = errors.New("vapi: private key not configured")
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultBase
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(2), 2),
	}
}

// ListCalls returns the most recent calls, newest first as the API orders them.
func (c *Client) ListCalls(ctx context.Context, key string, limit int) ([]domain.Call, error) {
	if !domain.UsableKey(key) {
		return nil, ErrMissingKey
	}
	if limit <= 0 {
		limit = 50
	}
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/call?limit=%d", c.base, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("vapi", "call", 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("vapi", "call", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("vapi: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out []domain.Call
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vapi: decode calls: %w", err)
	}
	if out == nil {
		out = []domain.Call{}
	}
	return out, nil
}
