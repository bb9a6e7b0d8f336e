package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a running daemon's control server.
type Client struct {
	addr string
	http *http.Client
}

func NewClient(addr string) *Client {
	return &Client{addr: addr, http: &http.Client{Timeout: 5 * time.Second}}
}

// Crawl asks the daemon to start a run. started is false when one was
// already in progress.
func (c *Client) Crawl(ctx context.Context) (started bool, err error) {
	var r crawlResponse
	if err := c.do(ctx, http.MethodPost, "/crawl", nil, &r); err != nil {
		return false, err
	}
	return r.Started, nil
}

// SetInterval changes the daemon's cadence and returns the previous interval.
func (c *Client) SetInterval(ctx context.Context, d time.Duration) (time.Duration, error) {
	body := map[string]any{"duration": d.String()}
	var r intervalResponse
	if err := c.do(ctx, http.MethodPost, "/set-interval", body, &r); err != nil {
		return 0, err
	}
	if r.Old == "" {
		return 0, nil
	}
	old, err := time.ParseDuration(r.Old)
	if err != nil {
		return 0, fmt.Errorf("parse previous interval: %w", err)
	}
	return old, nil
}

// Status fetches the daemon's scheduler state.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var r StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &r)
	return r, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon at %s: %w", c.addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("server error: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) baseURL() string {
	if strings.HasPrefix(c.addr, "http://") || strings.HasPrefix(c.addr, "https://") {
		return strings.TrimRight(c.addr, "/")
	}
	return "http://" + c.addr
}
