package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"coralguide/internal/vocab"
)

const (
	structuredSelector = "table, .infobox, .item-info, .details"
	badgeSelector      = ".icons, .icon-list, .tags, .badges, .chips"
	mainSelector       = "main, article"
	headerImageSel     = "article img, main img, .header img, .infobox img"
)

// Navigation chrome repeated on every page; stripped before the fulltext
// tier to cut false positives.
var noisePhrases = regexp.MustCompile(`(?i)\b(Coral Guide|Journal|Crafting|NPCs|Locations|Item database)\b`)

// tiers are ordered text-region extractors; the fulltext tier is gated in
// Attributes and only fills remaining gaps.
var tiers = []func(doc *goquery.Document) []string{
	structuredRegions,
	badgeRegions,
}

// Attributes recovers the season and weather sets for one detail page.
// Structured containers are scanned first, then icon/badge groups; the main
// content text is consulted only while either set is still empty. Matches
// from every tier that runs are unioned.
func Attributes(doc *goquery.Document) (seasons, weather vocab.Set) {
	seasons, weather = vocab.Set{}, vocab.Set{}
	if doc == nil {
		return seasons, weather
	}

	scan := func(text string) {
		seasons.Union(vocab.Match(text, vocab.Seasons))
		weather.Union(vocab.Match(text, vocab.Weather))
	}

	for _, tier := range tiers {
		for _, text := range tier(doc) {
			scan(text)
		}
	}

	if seasons.Len() == 0 || weather.Len() == 0 {
		scan(fulltextRegion(doc))
	}
	return seasons, weather
}

// AttributesFromHTML parses raw page markup. Malformed markup yields empty
// sets rather than an error; a detail page that cannot be read contributes
// nothing.
func AttributesFromHTML(html string) (vocab.Set, vocab.Set) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return vocab.Set{}, vocab.Set{}
	}
	return Attributes(doc)
}

func structuredRegions(doc *goquery.Document) []string {
	out := []string{}
	doc.Find(structuredSelector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, vocab.Normalize(sel.Text()))
	})
	return out
}

func badgeRegions(doc *goquery.Document) []string {
	out := []string{}
	doc.Find(badgeSelector).Each(func(_ int, sel *goquery.Selection) {
		parts := []string{vocab.Normalize(sel.Text())}
		parts = append(parts, AccessibleNames(sel)...)
		out = append(out, strings.Join(parts, " "))
	})
	return out
}

func fulltextRegion(doc *goquery.Document) string {
	region := doc.Find(mainSelector).First()
	text := ""
	if region.Length() > 0 {
		text = region.Text()
	} else {
		text = doc.Find("body").Text()
	}
	return vocab.Normalize(noisePhrases.ReplaceAllString(text, " "))
}

// AccessibleNames collects alt/title/aria-label values of icons nested in a
// selection. Wiki rows and badge groups carry season icons whose only text
// is in these attributes.
func AccessibleNames(sel *goquery.Selection) []string {
	out := []string{}
	sel.Find("img, [title], [aria-label]").Each(func(_ int, icon *goquery.Selection) {
		parts := []string{}
		for _, attr := range []string{"alt", "title", "aria-label"} {
			if v, ok := icon.Attr(attr); ok && strings.TrimSpace(v) != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			out = append(out, vocab.Normalize(strings.Join(parts, " ")))
		}
	})
	return out
}

// HeaderImage finds a representative image on a detail page, used when the
// listing gave no icon.
func HeaderImage(doc *goquery.Document) string {
	img := doc.Find(headerImageSel).First()
	if src, ok := img.Attr("src"); ok {
		return src
	}
	return ""
}

// lazyAttrs is the priority order for lazy-loaded image sources.
var lazyAttrs = []string{"data-src", "data-original", "data-lazy-src", "src"}

// ImageURL resolves the best image reference of an <img>: first srcset
// candidate, then the lazy-load attributes, skipping data: placeholders.
func ImageURL(img *goquery.Selection) string {
	if img == nil || img.Length() == 0 {
		return ""
	}
	srcset, ok := img.Attr("srcset")
	if !ok {
		srcset, _ = img.Attr("data-srcset")
	}
	if srcset != "" {
		first := strings.TrimSpace(strings.SplitN(srcset, ",", 2)[0])
		first = strings.SplitN(first, " ", 2)[0]
		if first != "" && !strings.HasPrefix(first, "data:") {
			return first
		}
	}
	for _, attr := range lazyAttrs {
		if v, ok := img.Attr(attr); ok && v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	src, _ := img.Attr("src")
	return src
}
