package sources

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"coralguide/internal/browser"
	"coralguide/internal/vocab"
)

// fakeBrowser serves canned pages and records the call order.
type fakeBrowser struct {
	pages    map[string]string
	items    map[string][]browser.JournalItem
	captured []browser.CapturedResponse
	calls    []string
}

func (f *fakeBrowser) HTML(ctx context.Context, url string) (string, error) {
	f.calls = append(f.calls, "html:"+url)
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

func (f *fakeBrowser) JournalItems(ctx context.Context, url string) ([]browser.JournalItem, error) {
	f.calls = append(f.calls, "items:"+url)
	return f.items[url], nil
}

func (f *fakeBrowser) CaptureJSON(ctx context.Context, url string, settle time.Duration) ([]browser.CapturedResponse, error) {
	f.calls = append(f.calls, "capture:"+url)
	return f.captured, nil
}

func (f *fakeBrowser) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func TestJournalFetchListings(t *testing.T) {
	fake := &fakeBrowser{
		items: map[string][]browser.JournalItem{
			"https://coral.guide/journal/caught/fish": {
				{Name: "Tuna", Image: "tuna.webp", Href: "/database/items/tuna"},
			},
		},
		pages: map[string]string{
			"https://coral.guide/database/items/tuna": `<html><body>
				<table><tr><td>Season</td><td>Winter</td></tr>
				<tr><td>Weather</td><td>Stormy</td></tr></table>
				</body></html>`,
		},
	}
	src := &JournalSource{
		Session:  fake,
		BaseURL:  "https://coral.guide",
		ListURLs: []string{"https://coral.guide/journal/caught/fish"},
	}

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len=%d", len(records))
	}
	rec := records[0]
	if rec.Name != "Tuna" || rec.Image != "tuna.webp" {
		t.Fatalf("record: %+v", rec)
	}
	if !rec.Seasons.Equal(vocab.NewSet("Winter")) || !rec.Weather.Equal(vocab.NewSet("Stormy")) {
		t.Fatalf("attrs: %v %v", rec.Seasons, rec.Weather)
	}
	if fake.called("capture:") {
		t.Fatal("fallback ran despite listings yielding records")
	}
}

func TestJournalFallsBackToCapturedJSON(t *testing.T) {
	fake := &fakeBrowser{
		items: map[string][]browser.JournalItem{},
		captured: []browser.CapturedResponse{
			{URL: "https://coral.guide/api/items", Body: []byte(`{
				"items": [
					{"name": "Tuna", "icon": "tuna.webp", "seasons": ["winter"]},
					{"name": "Blue Starfish"}
				]
			}`)},
		},
	}
	src := &JournalSource{
		Session:  fake,
		BaseURL:  "https://coral.guide",
		ListURLs: []string{"https://coral.guide/journal/caught/fish"},
	}

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("len=%d: %+v", len(records), records)
	}
	if records[0].Name != "Tuna" || !records[0].Seasons.Equal(vocab.NewSet("Winter")) {
		t.Fatalf("record: %+v", records[0])
	}
	// Name-bearing nodes survive without an image.
	if records[1].Name != "Blue Starfish" || records[1].Image != "" {
		t.Fatalf("record: %+v", records[1])
	}
	if !fake.called("capture:") {
		t.Fatal("json capture never ran")
	}
	if fake.called("html:https://coral.guide/database") {
		t.Fatal("index scan ran although json capture produced records")
	}
}

func TestJournalFallsBackToIndexScan(t *testing.T) {
	fake := &fakeBrowser{
		items: map[string][]browser.JournalItem{},
		pages: map[string]string{
			"https://coral.guide/database": `<html><body>
				<div><a href="/database/items/tuna">Tuna</a></div>
				</body></html>`,
			"https://coral.guide/database/items/tuna": `<html><body>
				<table><tr><td>Season</td><td>Winter</td></tr></table>
				</body></html>`,
		},
	}
	src := &JournalSource{
		Session:  fake,
		BaseURL:  "https://coral.guide",
		ListURLs: []string{"https://coral.guide/journal/caught/fish"},
	}

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len=%d: %+v", len(records), records)
	}
	if records[0].Name != "Tuna" || !records[0].Seasons.Equal(vocab.NewSet("Winter")) {
		t.Fatalf("record: %+v", records[0])
	}

	// Capture runs before the index scan.
	captureAt, scanAt := -1, -1
	for i, call := range fake.calls {
		switch call {
		case "capture:https://coral.guide/database":
			captureAt = i
		case "html:https://coral.guide/database":
			scanAt = i
		}
	}
	if captureAt == -1 || scanAt == -1 || captureAt > scanAt {
		t.Fatalf("fallback order: %v", fake.calls)
	}
}
