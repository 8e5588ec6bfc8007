package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"coralguide/internal"
	"coralguide/internal/vocab"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS items (
  key TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  image TEXT,
  seasons TEXT,
  weather TEXT,
  sourcePage TEXT,
  category TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  startedAt TEXT NOT NULL,
  itemCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceItems stores the merged output of a run, preserving record order.
func (d *DB) ReplaceItems(records []internal.ItemRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO items (key, position, name, image, seasons, weather, sourcePage, category, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.Exec(rec.Key(), i, rec.Name, rec.Image,
			vocab.Join(rec.Seasons), vocab.Join(rec.Weather), rec.SourcePage, rec.Category)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`INSERT INTO runs (startedAt, itemCount) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339), len(records)); err != nil {
		return err
	}

	return tx.Commit()
}

// ListItems restores the stored records in run order. Season/weather cells
// are split back into sets.
func (d *DB) ListItems() ([]internal.ItemRecord, error) {
	rows, err := d.conn.Query(`
SELECT name, image, seasons, weather, sourcePage, category
FROM items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.ItemRecord, 0)
	for rows.Next() {
		var name string
		var image, seasons, weather, sourcePage, category sql.NullString
		if err := rows.Scan(&name, &image, &seasons, &weather, &sourcePage, &category); err != nil {
			return nil, err
		}
		rec := internal.NewItemRecord(name, sourcePage.String)
		rec.Image = image.String
		rec.Category = category.String
		rec.Seasons = splitLabels(seasons.String)
		rec.Weather = splitLabels(weather.String)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (string, bool, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func splitLabels(joined string) vocab.Set {
	out := vocab.Set{}
	if joined == "" {
		return out
	}
	for _, label := range strings.Split(joined, "; ") {
		out.Add(strings.TrimSpace(label))
	}
	return out
}
