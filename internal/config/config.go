package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	JournalBaseURL string
	JournalURLs    []string
	WikiURLs       []string

	DataDir     string
	OutputCSV   string
	OutputXLSX  string
	DBPath      string
	IconBaseURL string
	IconVersion string

	FetchAttempts  int
	FetchTimeout   time.Duration
	FetchBackoff   time.Duration
	Politeness     time.Duration
	BrowserTimeout time.Duration
	Headless       bool
}

var defaultJournalURLs = []string{
	"https://coral.guide/journal/produce/crops",
	"https://coral.guide/journal/produce/animalproducts",
	"https://coral.guide/journal/produce/artisanproducts",
	"https://coral.guide/journal/produce/ocean",
	"https://coral.guide/journal/caught/fish",
	"https://coral.guide/journal/caught/insects",
	"https://coral.guide/journal/caught/seacritters",
	"https://coral.guide/journal/found/artifacts",
	"https://coral.guide/journal/found/gems",
	"https://coral.guide/journal/found/fossils",
	"https://coral.guide/journal/found/scavangables",
}

var defaultWikiURLs = []string{
	"https://coralisland.fandom.com/wiki/Crop",
	"https://coralisland.fandom.com/wiki/Animal_Products",
	"https://coralisland.fandom.com/wiki/Artisan_Goods",
	"https://coralisland.fandom.com/wiki/Ocean_Farming",
	"https://coralisland.fandom.com/wiki/Fish",
	"https://coralisland.fandom.com/wiki/Insects",
	"https://coralisland.fandom.com/wiki/Sea_Critters",
	"https://coralisland.fandom.com/wiki/Artifacts",
	"https://coralisland.fandom.com/wiki/Gems",
	"https://coralisland.fandom.com/wiki/Fossil",
	"https://coralisland.fandom.com/wiki/Scavengeables",
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		JournalBaseURL: getEnv("JOURNAL_BASE_URL", "https://coral.guide"),
		JournalURLs:    getEnvList("JOURNAL_URLS", defaultJournalURLs),
		WikiURLs:       getEnvList("WIKI_URLS", defaultWikiURLs),

		DataDir:     getEnv("DATA_DIR", filepath.Join(cwd, "pt-BR")),
		OutputCSV:   getEnv("OUTPUT_CSV", filepath.Join(cwd, "coral_island.csv")),
		OutputXLSX:  getEnv("OUTPUT_XLSX", ""),
		DBPath:      getEnv("DB_PATH", ""),
		IconBaseURL: getEnv("ICON_BASE_URL", "https://coral.guide/assets/live/items/icons/"),
		IconVersion: getEnv("ICON_VERSION", "v1.2-1238"),

		FetchAttempts:  getEnvInt("FETCH_ATTEMPTS", 3),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT_MS", 20*time.Second),
		FetchBackoff:   getEnvDuration("FETCH_BACKOFF_MS", 1500*time.Millisecond),
		Politeness:     getEnvDuration("POLITENESS_MS", 400*time.Millisecond),
		BrowserTimeout: getEnvDuration("BROWSER_TIMEOUT_MS", 30*time.Second),
		Headless:       getEnvBool("BROWSER_HEADLESS", true),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return time.Duration(parsed) * time.Millisecond
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	switch value {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
