package tracking

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Tracker records detections in SQLite.
type Tracker struct {
	db *sql.DB
}

// NewTracker opens or creates a SQLite database for tracking.
func NewTracker(dbPath string) (*Tracker, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Tracker{db: db}, nil
}

// Track stores one detection.
func (t *Tracker) Track(r Record) error {
	if r.Verdict == "" {
		r.Verdict = VerdictOK
	}
	if _, err := t.db.Exec(insertSQL, r.File, r.Function, r.Line, r.Inquiry, r.Declared, r.Parsed, r.Suppressed, r.Verdict, r.ExecTimeUs); err != nil {
		return fmt.Errorf("track: %w", err)
	}

	// Cleanup old records
	t.db.Exec(cleanupSQL)

	return nil
}

// GetSummary returns aggregate tracking stats.
func (t *Tracker) GetSummary() (*Summary, error) {
	var s Summary
	err := t.db.QueryRow(summarySQL).Scan(&s.Total, &s.Failures, &s.Slots, &s.Suppressed, &s.SuppressedPct, &s.TotalTimeUs)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &s, nil
}

// GetByVerdict returns detection counts per verdict, most frequent first.
func (t *Tracker) GetByVerdict() ([]VerdictCount, error) {
	rows, err := t.db.Query(byVerdictSQL)
	if err != nil {
		return nil, fmt.Errorf("by verdict: %w", err)
	}
	defer rows.Close()

	var out []VerdictCount
	for rows.Next() {
		var v VerdictCount
		if err := rows.Scan(&v.Verdict, &v.Count); err != nil {
			return nil, fmt.Errorf("by verdict scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByInquiry returns per-inquiry-function stats for the top n functions.
func (t *Tracker) GetByInquiry(n int) ([]InquiryStats, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := t.db.Query(byInquirySQL, n)
	if err != nil {
		return nil, fmt.Errorf("by inquiry: %w", err)
	}
	defer rows.Close()

	var out []InquiryStats
	for rows.Next() {
		var s InquiryStats
		if err := rows.Scan(&s.Inquiry, &s.Calls, &s.Failures, &s.Slots, &s.Suppressed); err != nil {
			return nil, fmt.Errorf("by inquiry scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetRecent returns the last n detections, newest first.
func (t *Tracker) GetRecent(n int) ([]Record, error) {
	rows, err := t.db.Query(recentSQL, n)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.File, &r.Function, &r.Line, &r.Inquiry, &r.Declared, &r.Parsed, &r.Suppressed, &r.Verdict, &r.ExecTimeUs, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("recent scan: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (t *Tracker) Close() error {
	return t.db.Close()
}

// DBPath resolves the tracking database path.
func DBPath(configPath string) string {
	if p := os.Getenv("TILDE_DB_PATH"); p != "" {
		return p
	}
	if configPath != "" {
		return configPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "tilde", "tracking.db")
}
