// Package storage keeps a sqlite record of performed searches. It sits
// outside the search pipeline: the aggregation core itself holds no state
// across requests.
package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS searches (
  id            INTEGER PRIMARY KEY,
  term          TEXT NOT NULL,
  location      TEXT,
  currency      TEXT NOT NULL,
  sources       TEXT NOT NULL,
  result_count  INTEGER NOT NULL,
  duration_ms   INTEGER NOT NULL,
  created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_searches_time ON searches(created_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SearchRecord is one completed search.
type SearchRecord struct {
	Term        string        `json:"term"`
	Location    string        `json:"location,omitempty"`
	Currency    string        `json:"currency"`
	Sources     []string      `json:"sources"`
	ResultCount int           `json:"result_count"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (d *DB) RecordSearch(ctx context.Context, rec SearchRecord) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO searches(term, location, currency, sources, result_count, duration_ms) VALUES(?,?,?,?,?,?)`,
		rec.Term, nullIfEmpty(rec.Location), rec.Currency, strings.Join(rec.Sources, ","), rec.ResultCount, rec.Duration.Milliseconds())
	return err
}

// ListRecent returns the most recent searches, newest first.
func (d *DB) ListRecent(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT term, location, currency, sources, result_count, duration_ms, created_at FROM searches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []SearchRecord{}
	for rows.Next() {
		var (
			rec          SearchRecord
			location     sql.NullString
			sourcesField string
			createdAtStr string
		)
		if err := rows.Scan(&rec.Term, &location, &rec.Currency, &sourcesField, &rec.ResultCount, &rec.DurationMS, &createdAtStr); err != nil {
			return nil, err
		}
		rec.Location = location.String
		if sourcesField != "" {
			rec.Sources = strings.Split(sourcesField, ",")
		}
		// Parse SQLite CURRENT_TIMESTAMP format, then RFC3339.
		if t, perr := time.Parse("2006-01-02 15:04:05", createdAtStr); perr == nil {
			rec.CreatedAt = t
		} else if t2, perr2 := time.Parse(time.RFC3339, createdAtStr); perr2 == nil {
			rec.CreatedAt = t2
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Stats summarizes the recorded search history.
type Stats struct {
	SearchCount  int     `json:"search_count"`
	AvgResults   float64 `json:"avg_results"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	DistinctTerm int     `json:"distinct_terms"`
}

func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	row := d.sql.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(AVG(result_count), 0),
			COALESCE(AVG(duration_ms), 0),
			COUNT(DISTINCT term)
		FROM searches`)
	if err := row.Scan(&s.SearchCount, &s.AvgResults, &s.AvgDuration, &s.DistinctTerm); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
