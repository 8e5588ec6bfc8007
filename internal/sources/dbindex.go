package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"coralguide/internal"
	"coralguide/internal/extract"
	"coralguide/internal/vocab"
)

const databasePath = "/database"

// scanDatabaseIndex walks the flat item catalog page, resolving a name and
// icon for every /database/ anchor and extracting attributes from each
// detail page. First record per name wins.
func (s *JournalSource) scanDatabaseIndex(ctx context.Context) ([]internal.ItemRecord, error) {
	indexURL := strings.TrimRight(s.BaseURL, "/") + databasePath
	html, err := s.Session.HTML(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	doc, err := docFromHTML(html)
	if err != nil {
		return nil, err
	}

	byName := map[string]struct{}{}
	seenHref := map[string]struct{}{}
	out := make([]internal.ItemRecord, 0)

	doc.Find("a[href^='/database/']").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		if _, ok := seenHref[href]; ok {
			return
		}
		seenHref[href] = struct{}{}

		name := anchorName(a)
		if name == "" {
			return
		}

		parent := a.Closest("div,li,article,section")
		if parent.Length() == 0 {
			parent = a.Parent()
		}
		image := extract.ImageURL(parent.Find("img").First())
		if image == "" {
			image = extract.ImageURL(a.Find("img").First())
		}

		rec := internal.NewItemRecord(name, indexURL)
		rec.Image = image
		rec.Seasons, rec.Weather = s.detailAttributes(ctx, s.absolute(href))
		if rec.Image == "" {
			rec.Image = s.detailHeaderImage(ctx, s.absolute(href))
		}

		if _, ok := byName[rec.Key()]; ok {
			return
		}
		byName[rec.Key()] = struct{}{}
		out = append(out, rec)
	})

	return out, nil
}

func anchorName(a *goquery.Selection) string {
	if name := vocab.Normalize(a.Text()); name != "" {
		return name
	}
	if title, ok := a.Attr("title"); ok {
		if name := vocab.Normalize(title); name != "" {
			return name
		}
	}
	parent := a.Closest("div,li,article,section")
	if parent.Length() == 0 {
		parent = a.Parent()
	}
	for _, sel := range []string{".name", "h3", "h4", "h2", "span"} {
		if name := vocab.Normalize(parent.Find(sel).First().Text()); name != "" {
			return name
		}
	}
	return ""
}

// captureDatabaseJSON loads the database page while recording its JSON
// traffic, then walks every payload for item-shaped objects (a name plus an
// icon or image reference).
func (s *JournalSource) captureDatabaseJSON(ctx context.Context) []internal.ItemRecord {
	indexURL := strings.TrimRight(s.BaseURL, "/") + databasePath
	payloads, err := s.Session.CaptureJSON(ctx, indexURL, 8*time.Second)
	if err != nil {
		fmt.Printf("  !! json capture failed: %v\n", err)
		return nil
	}

	out := make([]internal.ItemRecord, 0)
	for _, payload := range payloads {
		var data any
		if err := json.Unmarshal(payload.Body, &data); err != nil {
			continue
		}
		walkJSON(data, func(node map[string]any) {
			name := vocab.Normalize(stringValue(node["name"]))
			if name == "" {
				return
			}
			image := stringValue(node["icon"])
			if image == "" {
				image = stringValue(node["image"])
			}
			rec := internal.NewItemRecord(name, indexURL+"#json")
			rec.Image = image
			rec.Seasons = labelSet(firstValue(node, "seasons", "season"))
			rec.Weather = labelSet(node["weather"])
			out = append(out, rec)
		})
	}
	return out
}

func walkJSON(node any, visit func(map[string]any)) {
	switch v := node.(type) {
	case map[string]any:
		visit(v)
		for _, child := range v {
			walkJSON(child, visit)
		}
	case []any:
		for _, child := range v {
			walkJSON(child, visit)
		}
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func firstValue(node map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := node[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func labelSet(v any) vocab.Set {
	out := vocab.Set{}
	switch t := v.(type) {
	case string:
		out.Add(vocab.TitleSeason(t))
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok {
				out.Add(vocab.TitleSeason(s))
			}
		}
	}
	return out
}

func docFromHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
