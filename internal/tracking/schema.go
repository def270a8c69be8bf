package tracking

const createTableSQL = `
CREATE TABLE IF NOT EXISTS detections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME DEFAULT (datetime('now')),
	file TEXT NOT NULL,
	function TEXT NOT NULL,
	line INTEGER NOT NULL,
	inquiry TEXT NOT NULL,
	declared INTEGER NOT NULL,
	parsed INTEGER NOT NULL,
	suppressed INTEGER NOT NULL,
	verdict TEXT NOT NULL,
	exec_time_us INTEGER NOT NULL
);
`

const cleanupSQL = `DELETE FROM detections WHERE timestamp < datetime('now', '-90 days');`

const insertSQL = `
INSERT INTO detections (file, function, line, inquiry, declared, parsed, suppressed, verdict, exec_time_us)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const summarySQL = `
SELECT
	COUNT(*) as total,
	COALESCE(SUM(CASE WHEN verdict = 'ok' THEN 0 ELSE 1 END), 0) as failures,
	COALESCE(SUM(declared), 0) as slots,
	COALESCE(SUM(suppressed), 0) as suppressed,
	COALESCE(
		SUM(CASE WHEN verdict = 'ok' THEN suppressed ELSE 0 END) * 100.0 /
		NULLIF(SUM(CASE WHEN verdict = 'ok' THEN declared ELSE 0 END), 0),
	0) as suppressed_pct,
	COALESCE(SUM(exec_time_us), 0) as total_time_us
FROM detections;
`

const byVerdictSQL = `
SELECT verdict, COUNT(*) as count
FROM detections
GROUP BY verdict
ORDER BY count DESC, verdict;
`

const byInquirySQL = `
SELECT
	inquiry,
	COUNT(*) as calls,
	SUM(CASE WHEN verdict = 'ok' THEN 0 ELSE 1 END) as failures,
	SUM(declared) as slots,
	SUM(suppressed) as suppressed
FROM detections
GROUP BY inquiry
ORDER BY calls DESC, inquiry
LIMIT ?;
`

const recentSQL = `
SELECT file, function, line, inquiry, declared, parsed, suppressed, verdict, exec_time_us, timestamp
FROM detections
ORDER BY id DESC
LIMIT ?;
`

// VerdictOK is stored for successful detections.
const VerdictOK = "ok"

// Record is one detection to store.
type Record struct {
	File       string `json:"file"`
	Function   string `json:"function"`
	Line       int    `json:"line"`
	Inquiry    string `json:"inquiry"`
	Declared   int    `json:"declared"`
	Parsed     int    `json:"parsed"`
	Suppressed int    `json:"suppressed"`
	Verdict    string `json:"verdict"`
	ExecTimeUs int64  `json:"exec_time_us"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// Summary holds aggregate tracking stats.
type Summary struct {
	Total         int     `json:"total"`
	Failures      int     `json:"failures"`
	Slots         int     `json:"slots"`
	Suppressed    int     `json:"suppressed"`
	SuppressedPct float64 `json:"suppressed_pct"`
	TotalTimeUs   int64   `json:"total_time_us"`
}

// VerdictCount holds the number of detections with one verdict.
type VerdictCount struct {
	Verdict string `json:"verdict"`
	Count   int    `json:"count"`
}

// InquiryStats holds aggregate stats per inquiry function.
type InquiryStats struct {
	Inquiry    string `json:"inquiry"`
	Calls      int    `json:"calls"`
	Failures   int    `json:"failures"`
	Slots      int    `json:"slots"`
	Suppressed int    `json:"suppressed"`
}
