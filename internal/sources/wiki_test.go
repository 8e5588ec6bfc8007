package sources

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"coralguide/internal/vocab"
)

const wikiFixture = `<html><body>
<table class="wikitable">
  <tr><th>Image</th><th>Name</th><th>Season</th></tr>
  <tr>
    <td><img data-src="https://static.wiki/strawberry.png" src="data:image/gif;base64,x"></td>
    <td><a title="Strawberry" href="/wiki/Strawberry">Strawberry</a></td>
    <td>Spring <img alt="Rainy" src="data:image/gif;base64,y"></td>
  </tr>
  <tr>
    <td><img srcset="https://static.wiki/melon.png 1x, https://static.wiki/melon@2x.png 2x"></td>
    <td><a href="/wiki/Melon">Melon</a></td>
    <td>Summer</td>
  </tr>
  <tr>
    <td>Coral Fossil</td>
    <td></td>
    <td></td>
  </tr>
</table>
<table><tr><td>too short</td></tr></table>
</body></html>`

func TestParseWikiTables(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wikiFixture))
	if err != nil {
		t.Fatal(err)
	}
	records := ParseWikiTables(doc, "https://coralisland.fandom.com/wiki/Crop")
	if len(records) != 3 {
		t.Fatalf("len=%d: %+v", len(records), records)
	}

	strawberry := records[0]
	if strawberry.Name != "Strawberry" {
		t.Fatalf("name: %q", strawberry.Name)
	}
	// Lazy-load attribute beats the data: placeholder in src.
	if strawberry.Image != "https://static.wiki/strawberry.png" {
		t.Fatalf("image: %q", strawberry.Image)
	}
	if !strawberry.Seasons.Equal(vocab.NewSet("Spring")) {
		t.Fatalf("seasons: %v", strawberry.Seasons)
	}
	// Weather arrives via the icon's alt text only.
	if !strawberry.Weather.Equal(vocab.NewSet("Rainy")) {
		t.Fatalf("weather: %v", strawberry.Weather)
	}

	melon := records[1]
	if melon.Image != "https://static.wiki/melon.png" {
		t.Fatalf("srcset image: %q", melon.Image)
	}
	if !melon.Seasons.Equal(vocab.NewSet("Summer")) {
		t.Fatalf("seasons: %v", melon.Seasons)
	}

	// Name falls back to the first cell text when the row has no anchor.
	if records[2].Name != "Coral Fossil" {
		t.Fatalf("fallback name: %q", records[2].Name)
	}
}

func TestParseWikiTablesRichnessTieBreak(t *testing.T) {
	html := `<html><body><table>
	  <tr><th>Name</th><th>Season</th></tr>
	  <tr><td><a title="Tuna">Tuna</a></td><td></td></tr>
	  <tr><td><a title="Tuna">Tuna</a></td><td>Winter</td></tr>
	  <tr><td>filler</td><td></td></tr>
	</table></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	records := ParseWikiTables(doc, "wiki")
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	if !records[0].Seasons.Has("Winter") {
		t.Fatalf("richer duplicate lost: %v", records[0].Seasons)
	}
}
