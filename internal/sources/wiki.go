package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"coralguide/internal"
	"coralguide/internal/extract"
	"coralguide/internal/fetch"
	"coralguide/internal/pipeline"
	"coralguide/internal/vocab"
)

// WikiSource parses static wiki mirror tables. Everything needed for a row
// (name, icon, season/weather words) is inside the row itself, so no detail
// pages are fetched.
type WikiSource struct {
	Client     *fetch.Client
	URLs       []string
	Politeness time.Duration
}

func (s *WikiSource) Name() string { return "wiki" }

func (s *WikiSource) Fetch(ctx context.Context) ([]internal.ItemRecord, error) {
	records := make([]internal.ItemRecord, 0)
	for i, url := range s.URLs {
		if i > 0 && s.Politeness > 0 {
			time.Sleep(s.Politeness)
		}
		doc, err := s.Client.Document(ctx, url)
		if err != nil {
			fmt.Printf("  !! wiki page failed %s: %v\n", url, err)
			continue
		}
		records = append(records, ParseWikiTables(doc, url)...)
	}
	return records, nil
}

// headerWords are first-cell values that mark a header row leaking through
// as data.
var headerWords = map[string]struct{}{"image": {}, "icon": {}, "name": {}}

// ParseWikiTables extracts a record per data row of every table on the page.
// Tables shorter than three rows are navigation chrome and skipped.
// Duplicate names keep the richer extraction.
func ParseWikiTables(doc *goquery.Document, pageURL string) []internal.ItemRecord {
	best := map[string]internal.ItemRecord{}
	order := []string{}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 3 {
			return
		}
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			if row.Find("td").Length() == 0 {
				return
			}
			rec, ok := wikiRowRecord(row, pageURL)
			if !ok {
				return
			}
			key := rec.Key()
			prev, seen := best[key]
			if !seen {
				best[key] = rec
				order = append(order, key)
				return
			}
			if pipeline.RichnessScore(rec) > pipeline.RichnessScore(prev) {
				best[key] = rec
			}
		})
	})

	out := make([]internal.ItemRecord, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func wikiRowRecord(row *goquery.Selection, pageURL string) (internal.ItemRecord, bool) {
	name := ""
	if a := row.Find("a[title]").First(); a.Length() > 0 {
		title, _ := a.Attr("title")
		name = vocab.Normalize(title)
		if name == "" {
			name = vocab.Normalize(a.Text())
		}
	}
	if name == "" {
		if a := row.Find("a").First(); a.Length() > 0 {
			name = vocab.Normalize(a.Text())
		}
	}
	if name == "" {
		name = vocab.Normalize(row.Find("td").First().Text())
	}
	if name == "" {
		return internal.ItemRecord{}, false
	}
	if _, isHeader := headerWords[strings.ToLower(name)]; isHeader {
		return internal.ItemRecord{}, false
	}

	rec := internal.NewItemRecord(name, pageURL)
	rec.Image = extract.ImageURL(row.Find("img").First())

	rowText := vocab.Normalize(row.Text())
	rec.Seasons.Union(vocab.Match(rowText, vocab.Seasons))
	rec.Weather.Union(vocab.Match(rowText, vocab.Weather))
	for _, meta := range extract.AccessibleNames(row) {
		rec.Seasons.Union(vocab.Match(meta, vocab.Seasons))
		rec.Weather.Union(vocab.Match(meta, vocab.Weather))
	}
	return rec, true
}
