package pipeline

import (
	"coralguide/internal"
)

// Accumulator is the run-global de-duplication map. It is owned by the
// driver and appended to sequentially; records merge by normalized name,
// keeping first-seen order and first-seen scalar fields.
type Accumulator struct {
	order  []string
	byName map[string]internal.ItemRecord
}

func NewAccumulator() *Accumulator {
	return &Accumulator{byName: map[string]internal.ItemRecord{}}
}

// Add inserts a record, merging it into an existing one with the same
// normalized name. Records without a name are discarded.
func (a *Accumulator) Add(rec internal.ItemRecord) {
	key := rec.Key()
	if key == "" {
		return
	}
	existing, ok := a.byName[key]
	if !ok {
		a.order = append(a.order, key)
		a.byName[key] = rec
		return
	}
	merged, err := Merge(existing, rec)
	if err != nil {
		return
	}
	a.byName[key] = merged
}

func (a *Accumulator) AddAll(recs []internal.ItemRecord) {
	for _, rec := range recs {
		a.Add(rec)
	}
}

func (a *Accumulator) Len() int { return len(a.order) }

// Records returns the merged records in first-seen order.
func (a *Accumulator) Records() []internal.ItemRecord {
	out := make([]internal.ItemRecord, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, a.byName[key])
	}
	return out
}
