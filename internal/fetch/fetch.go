package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9,pt-BR;q=0.8",
}

// Client fetches page text with a capped retry loop. The backoff grows
// linearly: delay = base x attempt number.
type Client struct {
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	sleep      func(time.Duration)
}

func NewClient(timeout time.Duration, attempts int, backoff time.Duration) *Client {
	if attempts <= 0 {
		attempts = 3
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		attempts:   attempts,
		backoff:    backoff,
		sleep:      time.Sleep,
	}
}

// Get returns the page body for url, retrying transport errors and non-200
// statuses up to the attempt cap.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			c.sleep(c.backoff * time.Duration(attempt-1))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range defaultHeaders {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("http %d for %s", resp.StatusCode, url)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

// Document fetches url and parses it.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}
