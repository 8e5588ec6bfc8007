package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetRetriesThenSucceeds(t *testing.T) {
	attempt := 0
	c := NewClient(time.Second, 3, 100*time.Millisecond)
	c.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempt++
			if attempt < 3 {
				return &http.Response{
					StatusCode: http.StatusServiceUnavailable,
					Body:       io.NopCloser(strings.NewReader("busy")),
					Header:     make(http.Header),
				}, nil
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("<html>ok</html>")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	delays := []time.Duration{}
	c.sleep = func(d time.Duration) { delays = append(delays, d) }

	body, err := c.Get(context.Background(), "https://coral.guide/journal/produce/crops")
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "<html>ok</html>" {
		t.Fatalf("body: %q", body)
	}
	if attempt != 3 {
		t.Fatalf("attempts=%d", attempt)
	}
	// Exactly two backoff delays, growing linearly with the attempt number.
	if len(delays) != 2 || delays[0] != 100*time.Millisecond || delays[1] != 200*time.Millisecond {
		t.Fatalf("delays: %v", delays)
	}
}

func TestGetExhaustsAttempts(t *testing.T) {
	attempt := 0
	c := NewClient(time.Second, 3, 0)
	c.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempt++
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("missing")),
				Header:     make(http.Header),
			}, nil
		}),
	}
	c.sleep = func(time.Duration) {}

	if _, err := c.Get(context.Background(), "https://coral.guide/x"); err == nil {
		t.Fatal("expected error")
	}
	if attempt != 3 {
		t.Fatalf("attempts=%d", attempt)
	}
}

func TestDocumentParses(t *testing.T) {
	c := NewClient(time.Second, 1, 0)
	c.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla") {
				t.Fatalf("user agent: %q", got)
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`<html><body><h1>Tuna</h1></body></html>`)),
				Header:     make(http.Header),
			}, nil
		}),
	}

	doc, err := c.Document(context.Background(), "https://coral.guide/database/items/tuna")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("h1").Text() != "Tuna" {
		t.Fatalf("parse failed")
	}
}
