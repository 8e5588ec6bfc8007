package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"coralguide/internal"
)

// Source turns one configured origin (live site, wiki mirror, local dataset)
// into a sequence of unmerged records.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]internal.ItemRecord, error)
}

// ErrNoRecords is the only terminal failure of a run: every source came back
// empty.
var ErrNoRecords = errors.New("no records collected from any source")

// Run processes sources one at a time in configured order, accumulating and
// merging records globally. A failing source is logged and skipped; the
// politeness delay bounds the request rate between sources.
func Run(ctx context.Context, sources []Source, politeness time.Duration) ([]internal.ItemRecord, error) {
	acc := NewAccumulator()
	for i, src := range sources {
		if i > 0 && politeness > 0 {
			time.Sleep(politeness)
		}
		fmt.Printf("[%d/%d] source %s\n", i+1, len(sources), src.Name())
		records, err := src.Fetch(ctx)
		if err != nil {
			fmt.Printf("  !! source %s failed: %v\n", src.Name(), err)
			continue
		}
		fmt.Printf("  -> %d records\n", len(records))
		acc.AddAll(records)
	}
	if acc.Len() == 0 {
		return nil, ErrNoRecords
	}
	return acc.Records(), nil
}

// SortByCategory orders records by a fixed category list, then by name.
// Categories outside the list sort last.
func SortByCategory(records []internal.ItemRecord, order []string) {
	rank := make(map[string]int, len(order))
	for i, cat := range order {
		rank[cat] = i
	}
	sort.SliceStable(records, func(i, j int) bool {
		ri, iok := rank[records[i].Category]
		rj, jok := rank[records[j].Category]
		if !iok {
			ri = len(order)
		}
		if !jok {
			rj = len(order)
		}
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
	})
}
