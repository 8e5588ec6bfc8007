package pipeline

import (
	"fmt"

	"coralguide/internal"
	"coralguide/internal/vocab"
)

// Merge combines two records describing the same logical item. Attribute
// sets are unioned; scalar fields are first-seen-wins, so Merge is
// commutative in attributes but not in provenance. Records with different
// normalized names refuse to merge.
func Merge(a, b internal.ItemRecord) (internal.ItemRecord, error) {
	if a.Key() != b.Key() {
		return internal.ItemRecord{}, fmt.Errorf("cannot merge %q with %q: name mismatch", a.Name, b.Name)
	}

	out := internal.ItemRecord{
		Name:       a.Name,
		Image:      a.Image,
		SourcePage: a.SourcePage,
		Category:   a.Category,
		Seasons:    vocab.Set{},
		Weather:    vocab.Set{},
	}
	out.Seasons.Union(a.Seasons)
	out.Seasons.Union(b.Seasons)
	out.Weather.Union(a.Weather)
	out.Weather.Union(b.Weather)

	if out.Image == "" {
		out.Image = b.Image
	}
	if out.Category == "" {
		out.Category = b.Category
	}
	return out, nil
}

// RichnessScore counts the non-empty attribute fields of a record. It is a
// tie-break used by adapters choosing between two extractions of the same
// page; the cross-source accumulator never consults it.
func RichnessScore(r internal.ItemRecord) int {
	score := 0
	if r.Seasons.Len() > 0 {
		score++
	}
	if r.Weather.Len() > 0 {
		score++
	}
	if r.Image != "" {
		score++
	}
	return score
}
