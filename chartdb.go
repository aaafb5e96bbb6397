package main

import (
	"database/sql"
	"fmt"

	"lzmc/dotlzm"

	_ "github.com/mattn/go-sqlite3"
)

// ChartDB is the song-select index: one metadata row per compiled chart.
// Only header data and counts are stored, never the compiled chart itself.
type ChartDB struct {
	db *sql.DB
}

func OpenChartDB(path string) (*ChartDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS charts (
	path           TEXT PRIMARY KEY,
	audio_filename TEXT NOT NULL,
	audio_offset   INTEGER NOT NULL,
	tempo          INTEGER NOT NULL,
	measures       INTEGER NOT NULL,
	objects        INTEGER NOT NULL,
	diagnostics    INTEGER NOT NULL,
	failed         INTEGER NOT NULL,
	duration_ms    REAL NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create charts table: %w", err)
	}
	return &ChartDB{db: db}, nil
}

func (c *ChartDB) Close() error { return c.db.Close() }

func (c *ChartDB) Upsert(path string, chart *dotlzm.Chart) error {
	failed := 0
	if chart.Failed() {
		failed = 1
	}
	_, err := c.db.Exec(`
INSERT INTO charts (path, audio_filename, audio_offset, tempo, measures, objects, diagnostics, failed, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	audio_filename = excluded.audio_filename,
	audio_offset   = excluded.audio_offset,
	tempo          = excluded.tempo,
	measures       = excluded.measures,
	objects        = excluded.objects,
	diagnostics    = excluded.diagnostics,
	failed         = excluded.failed,
	duration_ms    = excluded.duration_ms`,
		path,
		chart.Header.AudioFilename,
		chart.Header.AudioOffsetMs,
		chart.Header.DefaultTempo,
		len(chart.Timeline),
		len(chart.Objects),
		len(chart.Diagnostics),
		failed,
		chartDurationMs(chart),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", path, err)
	}
	return nil
}

type ChartRow struct {
	Path          string
	AudioFilename string
	AudioOffsetMs int
	Tempo         int
	Measures      int
	Objects       int
	Diagnostics   int
	Failed        bool
	DurationMs    float64
}

func (c *ChartDB) List() ([]ChartRow, error) {
	rows, err := c.db.Query(`
SELECT path, audio_filename, audio_offset, tempo, measures, objects, diagnostics, failed, duration_ms
FROM charts ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChartRow
	for rows.Next() {
		var r ChartRow
		var failed int
		if err := rows.Scan(&r.Path, &r.AudioFilename, &r.AudioOffsetMs, &r.Tempo,
			&r.Measures, &r.Objects, &r.Diagnostics, &failed, &r.DurationMs); err != nil {
			return nil, err
		}
		r.Failed = failed != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func chartDurationMs(chart *dotlzm.Chart) float64 {
	if len(chart.Timeline) == 0 {
		return 0
	}
	last := chart.Timeline[len(chart.Timeline)-1]
	return last.StartTimeMs + last.DurationMs
}
