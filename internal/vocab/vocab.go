package vocab

import (
	"regexp"
	"sort"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

type Set map[string]struct{}

func NewSet(labels ...string) Set {
	s := Set{}
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

func (s Set) Add(label string) {
	if label != "" {
		s[label] = struct{}{}
	}
}

func (s Set) Has(label string) bool {
	_, ok := s[label]
	return ok
}

func (s Set) Union(other Set) {
	for label := range other {
		s[label] = struct{}{}
	}
}

func (s Set) Len() int { return len(s) }

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for label := range s {
		if !other.Has(label) {
			return false
		}
	}
	return true
}

// Vocabulary maps lowercase match words to canonical output labels.
// Matching is substring containment, so a word can fire inside an unrelated
// token ("sunny" in "Sunnyside"); accepted as a heuristic limitation.
type Vocabulary map[string]string

var Seasons = Vocabulary{
	"spring":      "Spring",
	"summer":      "Summer",
	"fall":        "Fall",
	"autumn":      "Fall",
	"winter":      "Winter",
	"all seasons": "All Seasons",
	"year round":  "Year Round",
}

var Weather = Vocabulary{
	"sunny":  "Sunny",
	"rainy":  "Rainy",
	"stormy": "Stormy",
	"windy":  "Windy",
	"snowy":  "Snowy",
	"cloudy": "Cloudy",
}

// canonicalOrder fixes the serialization order of season labels. Weather
// and unrecognized labels have no fixed order and sort alphabetically.
var canonicalOrder = []string{
	"Spring", "Summer", "Fall", "Winter", "All Seasons", "Year Round",
}

// Match lower-cases text and collects every vocabulary word contained in it,
// mapped to its canonical label.
func Match(text string, vocabulary Vocabulary) Set {
	found := Set{}
	low := strings.ToLower(text)
	for word, label := range vocabulary {
		if strings.Contains(low, word) {
			found.Add(label)
		}
	}
	return found
}

// Join renders a set as a single cell: season labels first in fixed order,
// everything else appended alphabetically, separated by "; ".
func Join(s Set) string {
	if len(s) == 0 {
		return ""
	}
	known := map[string]struct{}{}
	ordered := make([]string, 0, len(s))
	for _, label := range canonicalOrder {
		known[label] = struct{}{}
		if s.Has(label) {
			ordered = append(ordered, label)
		}
	}
	rest := make([]string, 0)
	for label := range s {
		if _, ok := known[label]; !ok {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	return strings.Join(append(ordered, rest...), "; ")
}

// First returns the first label in Join order, for the singular-season
// export variant.
func First(s Set) string {
	joined := Join(s)
	if joined == "" {
		return ""
	}
	return strings.SplitN(joined, "; ", 2)[0]
}

// SeasonFlags and WeatherFlags translate the boolean flag keys used by the
// pt-BR dataset files into canonical labels. Unknown keys are ignored.
var SeasonFlags = map[string]string{
	"spring": "Spring",
	"summer": "Summer",
	"fall":   "Fall",
	"autumn": "Fall",
	"winter": "Winter",
}

var WeatherFlags = map[string]string{
	"sunny":    "Sunny",
	"rain":     "Rainy",
	"storm":    "Stormy",
	"windy":    "Windy",
	"snow":     "Snowy",
	"blizzard": "Snowy",
	"cloudy":   "Cloudy",
}

// FromFlags maps a flag dictionary through a flag table, keeping only keys
// that are set and known.
func FromFlags(flags map[string]bool, table map[string]string) Set {
	out := Set{}
	for key, on := range flags {
		if !on {
			continue
		}
		if label, ok := table[strings.ToLower(key)]; ok {
			out.Add(label)
		}
	}
	return out
}

// TitleSeason canonicalizes a bare season word from a dataset list
// ("spring" -> "Spring", "autumn" -> "Fall"). Unrecognized words are
// title-cased and passed through.
func TitleSeason(word string) string {
	low := strings.ToLower(strings.TrimSpace(word))
	if low == "" {
		return ""
	}
	if label, ok := SeasonFlags[low]; ok {
		return label
	}
	if label, ok := Seasons[low]; ok {
		return label
	}
	return strings.ToUpper(low[:1]) + low[1:]
}
