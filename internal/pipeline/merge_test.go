package pipeline

import (
	"testing"

	"coralguide/internal"
	"coralguide/internal/vocab"
)

func rec(name, source string, seasons, weather []string) internal.ItemRecord {
	r := internal.NewItemRecord(name, source)
	for _, s := range seasons {
		r.Seasons.Add(s)
	}
	for _, w := range weather {
		r.Weather.Add(w)
	}
	return r
}

func TestMergeUnionsAttributes(t *testing.T) {
	a := rec("Strawberry", "live", []string{"Spring"}, nil)
	a.Image = "a.webp"
	b := rec("strawberry", "wiki", []string{"Summer"}, []string{"Rainy"})
	b.Image = "b.webp"
	b.Category = "crops"

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !merged.Seasons.Equal(vocab.NewSet("Spring", "Summer")) {
		t.Fatalf("seasons: %v", merged.Seasons)
	}
	if !merged.Weather.Equal(vocab.NewSet("Rainy")) {
		t.Fatalf("weather: %v", merged.Weather)
	}
	// First-seen wins for scalars, non-empty preferred.
	if merged.Name != "Strawberry" || merged.Image != "a.webp" || merged.SourcePage != "live" {
		t.Fatalf("scalars: %+v", merged)
	}
	if merged.Category != "crops" {
		t.Fatalf("category not filled: %q", merged.Category)
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := rec("Tuna", "live", []string{"Winter"}, []string{"Stormy"})
	b := rec("tuna", "wiki", []string{"Fall"}, nil)

	once, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Merge(once, b)
	if err != nil {
		t.Fatal(err)
	}
	if !once.Seasons.Equal(twice.Seasons) || !once.Weather.Equal(twice.Weather) ||
		once.Name != twice.Name || once.Image != twice.Image {
		t.Fatalf("merge not idempotent:\n%+v\n%+v", once, twice)
	}
}

func TestMergeRefusesDifferentNames(t *testing.T) {
	a := rec("Tuna", "live", nil, nil)
	b := rec("Salmon", "live", nil, nil)
	if _, err := Merge(a, b); err == nil {
		t.Fatal("expected name mismatch error")
	}
}

func TestAccumulatorDeduplicatesByName(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(rec("Strawberry", "p1", []string{"Spring"}, nil))
	acc.Add(rec("STRAWBERRY", "p2", []string{"Summer"}, []string{"Sunny"}))
	acc.Add(rec("Tuna", "p1", nil, nil))

	records := acc.Records()
	if len(records) != 2 {
		t.Fatalf("len=%d", len(records))
	}
	first := records[0]
	if first.Name != "Strawberry" {
		t.Fatalf("first-seen casing lost: %q", first.Name)
	}
	if !first.Seasons.Equal(vocab.NewSet("Spring", "Summer")) || !first.Weather.Equal(vocab.NewSet("Sunny")) {
		t.Fatalf("attributes not unioned: %+v", first)
	}
	if first.SourcePage != "p1" {
		t.Fatalf("provenance: %q", first.SourcePage)
	}
}

func TestAccumulatorDropsUnnamed(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(rec("   ", "p1", nil, nil))
	if acc.Len() != 0 {
		t.Fatalf("len=%d", acc.Len())
	}
}

func TestRichnessScore(t *testing.T) {
	r := rec("X", "p", []string{"Spring"}, nil)
	r.Image = "x.webp"
	if got := RichnessScore(r); got != 2 {
		t.Fatalf("got %d", got)
	}
	if got := RichnessScore(rec("X", "p", nil, nil)); got != 0 {
		t.Fatalf("got %d", got)
	}
}
