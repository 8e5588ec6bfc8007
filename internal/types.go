package internal

import (
	"strings"

	"coralguide/internal/vocab"
)

// ItemRecord is one output row: a single logical game item with whatever
// attributes the sources could recover for it.
type ItemRecord struct {
	Image      string
	Name       string
	Seasons    vocab.Set
	Weather    vocab.Set
	SourcePage string
	Category   string
}

func NewItemRecord(name, sourcePage string) ItemRecord {
	return ItemRecord{
		Name:       name,
		Seasons:    vocab.Set{},
		Weather:    vocab.Set{},
		SourcePage: sourcePage,
	}
}

// Key is the de-duplication identity: normalized, lowercased name.
func (r ItemRecord) Key() string {
	return strings.ToLower(vocab.Normalize(r.Name))
}
