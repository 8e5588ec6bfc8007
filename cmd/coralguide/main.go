package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"coralguide/internal"
	"coralguide/internal/browser"
	"coralguide/internal/config"
	"coralguide/internal/fetch"
	"coralguide/internal/pipeline"
	"coralguide/internal/sources"
	"coralguide/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := os.Args[1]
	switch cmd {
	case "journal:scrape":
		session := browser.NewSession(cfg.Headless, cfg.BrowserTimeout)
		defer session.Close()
		src := &sources.JournalSource{
			Session:    session,
			BaseURL:    cfg.JournalBaseURL,
			ListURLs:   cfg.JournalURLs,
			Politeness: cfg.Politeness,
		}
		records, err := pipeline.Run(ctx, []pipeline.Source{src}, cfg.Politeness)
		must(err)
		must(persist(cfg, records))
		fmt.Printf("journal scrape done: %d items -> %s\n", len(records), cfg.OutputCSV)

	case "wiki:scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		seasonOnly := fs.Bool("season-only", false, "emit the reduced season column variant")
		_ = fs.Parse(os.Args[2:])
		src := &sources.WikiSource{
			Client:     fetch.NewClient(cfg.FetchTimeout, cfg.FetchAttempts, cfg.FetchBackoff),
			URLs:       cfg.WikiURLs,
			Politeness: cfg.Politeness,
		}
		records, err := pipeline.Run(ctx, []pipeline.Source{src}, cfg.Politeness)
		must(err)
		if *seasonOnly {
			must(pipeline.WriteSeasonCSV(records, cfg.OutputCSV))
		} else {
			must(persist(cfg, records))
		}
		fmt.Printf("wiki scrape done: %d items -> %s\n", len(records), cfg.OutputCSV)

	case "dataset:export":
		src := datasetSource(cfg)
		records, err := pipeline.Run(ctx, []pipeline.Source{src}, 0)
		must(err)
		pipeline.SortByCategory(records, sources.CategoryOrder)
		must(persist(cfg, records))
		fmt.Printf("dataset export done: %d items -> %s\n", len(records), cfg.OutputCSV)

	case "run":
		session := browser.NewSession(cfg.Headless, cfg.BrowserTimeout)
		defer session.Close()
		all := []pipeline.Source{
			datasetSource(cfg),
			&sources.WikiSource{
				Client:     fetch.NewClient(cfg.FetchTimeout, cfg.FetchAttempts, cfg.FetchBackoff),
				URLs:       cfg.WikiURLs,
				Politeness: cfg.Politeness,
			},
			&sources.JournalSource{
				Session:    session,
				BaseURL:    cfg.JournalBaseURL,
				ListURLs:   cfg.JournalURLs,
				Politeness: cfg.Politeness,
			},
		}
		records, err := pipeline.Run(ctx, all, cfg.Politeness)
		must(err)
		pipeline.SortByCategory(records, sources.CategoryOrder)
		must(persist(cfg, records))
		fmt.Printf("run done: %d items -> %s\n", len(records), cfg.OutputCSV)

	case "db:export":
		if cfg.DBPath == "" {
			must(fmt.Errorf("DB_PATH is required for db:export"))
		}
		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		records, err := db.ListItems()
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no stored items in %s", cfg.DBPath))
		}
		must(pipeline.WriteCSV(records, cfg.OutputCSV))
		fmt.Printf("db export done: %d items -> %s\n", len(records), cfg.OutputCSV)

	default:
		usage()
		os.Exit(1)
	}
}

func datasetSource(cfg config.Config) *sources.DatasetSource {
	return &sources.DatasetSource{
		Dir:         cfg.DataDir,
		IconBaseURL: cfg.IconBaseURL,
		IconVersion: cfg.IconVersion,
	}
}

// persist writes the CSV and, when configured, the XLSX copy and the sqlite
// item store.
func persist(cfg config.Config, records []internal.ItemRecord) error {
	if err := pipeline.WriteCSV(records, cfg.OutputCSV); err != nil {
		return err
	}
	if cfg.OutputXLSX != "" {
		if err := pipeline.ExportXLSX(records, cfg.OutputXLSX); err != nil {
			return err
		}
	}
	if cfg.DBPath != "" {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.ReplaceItems(records); err != nil {
			return err
		}
		return db.SetMetadata("last_export", cfg.OutputCSV)
	}
	return nil
}

func usage() {
	fmt.Println("usage: coralguide <command>")
	fmt.Println("commands:")
	fmt.Println("  journal:scrape    crawl the live journal listings (browser)")
	fmt.Println("  wiki:scrape       parse the wiki mirror tables [--season-only]")
	fmt.Println("  dataset:export    export the local pt-BR dataset")
	fmt.Println("  run               all sources merged into one CSV")
	fmt.Println("  db:export         export previously stored items")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
