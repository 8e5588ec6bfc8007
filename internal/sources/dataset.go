package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"coralguide/internal"
	"coralguide/internal/vocab"
)

// CategoryOrder fixes the output ordering of the dataset export.
var CategoryOrder = []string{
	"crops", "animal products", "artisan products", "ocean",
	"peixes", "insetos", "animais marinhos",
	"artefatos", "gemas", "fossil", "coletaveis",
}

var journalFiles = []struct {
	file     string
	category string
	label    string
}{
	{"journal-crops.json", "crops", "crops"},
	{"journal-animal-products.json", "animalproducts", "animal products"},
	{"journal-artisan-products.json", "artisan", "artisan products"},
	{"journal-ocean-products.json", "ocean", "ocean"},
	{"journal-fish.json", "fish", "peixes"},
	{"journal-insects.json", "insects", "insetos"},
	{"journal-sea-critters.json", "seacritters", "animais marinhos"},
	{"journal-artifacts.json", "artifacts", "artefatos"},
	{"journal-gems.json", "gems", "gemas"},
	{"journal-fossils.json", "fossils", "fossil"},
	{"journal-scavangable.json", "scavangables", "coletaveis"},
}

type datasetItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IconName    string `json:"iconName"`
}

type spawnSetting struct {
	SpawnSeason  map[string]bool `json:"spawnSeason"`
	SpawnWeather map[string]bool `json:"spawnWeather"`
}

type cropEntry struct {
	datasetItem
	Item           *datasetItem `json:"item"`
	Pickupable     *datasetItem `json:"pickupableItem"`
	GrowableSeason []string     `json:"growableSeason"`
}

type spawnEntry struct {
	Item          *datasetItem    `json:"item"`
	SpawnSettings []spawnSetting  `json:"spawnSettings"`
	SpawnSeason   map[string]bool `json:"spawnSeason"`
	SpawnWeather  map[string]bool `json:"spawnWeather"`
}

type journalEntry struct {
	Key string `json:"key"`
}

// DatasetSource reads the pre-extracted pt-BR JSON files: journal entries
// reference the shared item catalog by id, and per-category files carry
// already-typed season/weather data. No text heuristics are involved.
type DatasetSource struct {
	Dir         string
	IconBaseURL string
	IconVersion string
}

func (s *DatasetSource) Name() string { return "dataset:" + s.Dir }

type spawnAttrs struct {
	seasons vocab.Set
	weather vocab.Set
}

func (s *DatasetSource) Fetch(ctx context.Context) ([]internal.ItemRecord, error) {
	items := s.itemIndex()
	cropSeasons := s.cropSeasonIndex(items)
	fishSpawn := s.spawnIndex("fish.json")
	insectSpawn := s.spawnIndex("bugs-and-insects.json")
	critterSpawn := s.spawnIndex("ocean-critters.json")

	out := make([]internal.ItemRecord, 0)
	for _, jf := range journalFiles {
		path := filepath.Join(s.Dir, jf.file)
		entries := []journalEntry{}
		if err := s.loadJSON(jf.file, &entries); err != nil {
			continue
		}

		count := 0
		for _, entry := range entries {
			if entry.Key == "" {
				continue
			}
			item := items[entry.Key]
			name := item.DisplayName
			if name == "" {
				name = entry.Key
			}

			rec := internal.NewItemRecord(name, path)
			rec.Image = s.iconURL(item.IconName)
			rec.Category = jf.label

			switch jf.category {
			case "crops", "ocean":
				rec.Seasons.Union(cropSeasons[entry.Key])
			case "fish":
				rec.Seasons.Union(fishSpawn[entry.Key].seasons)
				rec.Weather.Union(fishSpawn[entry.Key].weather)
			case "insects":
				rec.Seasons.Union(insectSpawn[entry.Key].seasons)
				rec.Weather.Union(insectSpawn[entry.Key].weather)
			case "seacritters":
				rec.Seasons.Union(critterSpawn[entry.Key].seasons)
				rec.Weather.Union(critterSpawn[entry.Key].weather)
			}
			// Remaining categories carry no season/weather data.

			out = append(out, rec)
			count++
		}
		fmt.Printf("  [dataset] %s: %d entries\n", jf.file, count)
	}
	return out, nil
}

// itemIndex maps item ids to display names and icons, from items.json
// supplemented by the identities embedded in crops.json.
func (s *DatasetSource) itemIndex() map[string]datasetItem {
	index := map[string]datasetItem{}

	items := []datasetItem{}
	if err := s.loadJSON("items.json", &items); err == nil {
		for _, item := range items {
			if item.ID != "" {
				index[item.ID] = item
			}
		}
	}

	crops := []cropEntry{}
	if err := s.loadJSON("crops.json", &crops); err == nil {
		for _, crop := range crops {
			for _, cand := range []*datasetItem{crop.Pickupable, crop.Item, &crop.datasetItem} {
				if cand == nil || cand.ID == "" {
					continue
				}
				if _, ok := index[cand.ID]; !ok {
					index[cand.ID] = *cand
				}
			}
		}
	}
	return index
}

// cropSeasonIndex maps the harvested item id to its growable seasons.
func (s *DatasetSource) cropSeasonIndex(items map[string]datasetItem) map[string]vocab.Set {
	out := map[string]vocab.Set{}
	crops := []cropEntry{}
	if err := s.loadJSON("crops.json", &crops); err != nil {
		return out
	}
	for _, crop := range crops {
		id := ""
		switch {
		case crop.Pickupable != nil && crop.Pickupable.ID != "":
			id = crop.Pickupable.ID
		case crop.Item != nil && crop.Item.ID != "":
			id = crop.Item.ID
		default:
			id = crop.ID
		}
		if id == "" {
			continue
		}
		seasons := vocab.Set{}
		for _, season := range crop.GrowableSeason {
			seasons.Add(vocab.TitleSeason(season))
		}
		out[id] = seasons
	}
	return out
}

// spawnIndex maps item ids to spawn season/weather flags, accepting both
// the per-setting list shape (fish) and the top-level shape (insects, sea
// critters).
func (s *DatasetSource) spawnIndex(file string) map[string]spawnAttrs {
	out := map[string]spawnAttrs{}
	entries := []spawnEntry{}
	if err := s.loadJSON(file, &entries); err != nil {
		return out
	}
	for _, entry := range entries {
		if entry.Item == nil || entry.Item.ID == "" {
			continue
		}
		attrs := spawnAttrs{seasons: vocab.Set{}, weather: vocab.Set{}}
		attrs.seasons.Union(vocab.FromFlags(entry.SpawnSeason, vocab.SeasonFlags))
		attrs.weather.Union(vocab.FromFlags(entry.SpawnWeather, vocab.WeatherFlags))
		for _, setting := range entry.SpawnSettings {
			attrs.seasons.Union(vocab.FromFlags(setting.SpawnSeason, vocab.SeasonFlags))
			attrs.weather.Union(vocab.FromFlags(setting.SpawnWeather, vocab.WeatherFlags))
		}
		out[entry.Item.ID] = attrs
	}
	return out
}

func (s *DatasetSource) loadJSON(file string, target any) error {
	blob, err := os.ReadFile(filepath.Join(s.Dir, file))
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, target)
}

func (s *DatasetSource) iconURL(iconName string) string {
	if iconName == "" {
		return ""
	}
	url := s.IconBaseURL + iconName + ".webp"
	if s.IconVersion != "" {
		url += "?v=" + s.IconVersion
	}
	return url
}
