package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coralguide/internal"
	"coralguide/internal/browser"
	"coralguide/internal/extract"
	"coralguide/internal/pipeline"
	"coralguide/internal/vocab"
)

// Browser is the slice of the browser session the journal source drives.
type Browser interface {
	HTML(ctx context.Context, url string) (string, error)
	JournalItems(ctx context.Context, url string) ([]browser.JournalItem, error)
	CaptureJSON(ctx context.Context, url string, settle time.Duration) ([]browser.CapturedResponse, error)
}

// JournalSource crawls the live journal category listings through a browser
// session. When discovery across every listing yields nothing, it falls back
// to the captured-JSON heuristic and then the flat database index scan.
type JournalSource struct {
	Session    Browser
	BaseURL    string
	ListURLs   []string
	Politeness time.Duration
}

func (s *JournalSource) Name() string { return "journal" }

func (s *JournalSource) Fetch(ctx context.Context) ([]internal.ItemRecord, error) {
	records := make([]internal.ItemRecord, 0)
	for i, url := range s.ListURLs {
		if i > 0 && s.Politeness > 0 {
			time.Sleep(s.Politeness)
		}
		fmt.Printf("  listing %s\n", url)
		pageRecords, err := s.fetchListing(ctx, url)
		if err != nil {
			fmt.Printf("  !! listing failed %s: %v\n", url, err)
			continue
		}
		records = append(records, pageRecords...)
	}

	if len(records) > 0 {
		return records, nil
	}

	// Primary discovery exhausted; try the in-page JSON payloads, then the
	// database index.
	fmt.Printf("  [fallback] journal listings empty, capturing database JSON\n")
	if fromJSON := s.captureDatabaseJSON(ctx); len(fromJSON) > 0 {
		return fromJSON, nil
	}
	fmt.Printf("  [fallback] scanning database index\n")
	return s.scanDatabaseIndex(ctx)
}

func (s *JournalSource) fetchListing(ctx context.Context, listURL string) ([]internal.ItemRecord, error) {
	items, err := s.Session.JournalItems(ctx, listURL)
	if err != nil {
		return nil, err
	}

	best := map[string]internal.ItemRecord{}
	order := []string{}
	for _, item := range items {
		detailURL := s.absolute(item.Href)
		rec := internal.NewItemRecord(vocab.Normalize(item.Name), listURL)
		rec.Image = item.Image
		rec.Seasons, rec.Weather = s.detailAttributes(ctx, detailURL)
		if rec.Image == "" {
			rec.Image = s.detailHeaderImage(ctx, detailURL)
		}

		key := rec.Key()
		prev, ok := best[key]
		if !ok {
			best[key] = rec
			order = append(order, key)
			continue
		}
		// Same listing produced a duplicate; keep the richer variant.
		if pipeline.RichnessScore(rec) > pipeline.RichnessScore(prev) {
			best[key] = rec
		}
	}

	out := make([]internal.ItemRecord, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out, nil
}

// detailAttributes runs the extractor against a rendered detail page. Any
// failure contributes empty sets.
func (s *JournalSource) detailAttributes(ctx context.Context, detailURL string) (vocab.Set, vocab.Set) {
	html, err := s.Session.HTML(ctx, detailURL)
	if err != nil {
		fmt.Printf("  !! detail failed %s: %v\n", detailURL, err)
		return vocab.Set{}, vocab.Set{}
	}
	return extract.AttributesFromHTML(html)
}

func (s *JournalSource) detailHeaderImage(ctx context.Context, detailURL string) string {
	html, err := s.Session.HTML(ctx, detailURL)
	if err != nil {
		return ""
	}
	doc, err := docFromHTML(html)
	if err != nil {
		return ""
	}
	return extract.HeaderImage(doc)
}

func (s *JournalSource) absolute(href string) string {
	if strings.HasPrefix(href, "/") {
		return strings.TrimRight(s.BaseURL, "/") + href
	}
	return href
}
