package tracking

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	tracker, err := NewTracker(dbPath)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	t.Cleanup(func() { tracker.Close() })
	return tracker
}

func TestNewTracker(t *testing.T) {
	tracker := newTestTracker(t)
	if tracker == nil {
		t.Fatal("tracker is nil")
	}
}

func TestTrack(t *testing.T) {
	tracker := newTestTracker(t)

	err := tracker.Track(Record{File: "/src/a.m", Function: "a", Line: 3, Inquiry: "myFunc", Declared: 4, Parsed: 4, Suppressed: 2, ExecTimeUs: 50})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	err = tracker.Track(Record{File: "/src/b.m", Function: "b", Line: 9, Inquiry: "myFunc", Declared: 2, Parsed: 3, Verdict: "count_mismatch", ExecTimeUs: 30})
	if err != nil {
		t.Fatalf("track: %v", err)
	}

	summary, err := tracker.GetSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// The failed detection counts toward slots but not the percentage.
	want := &Summary{Total: 2, Failures: 1, Slots: 6, Suppressed: 2, SuppressedPct: 50, TotalTimeUs: 80}
	if diff := cmp.Diff(want, summary, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryPctOnlyFailures(t *testing.T) {
	tracker := newTestTracker(t)
	if err := tracker.Track(Record{Inquiry: "f", Declared: 3, Verdict: "parse_failure"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	summary, err := tracker.GetSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.SuppressedPct != 0 || summary.Slots != 3 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSummaryEmpty(t *testing.T) {
	tracker := newTestTracker(t)
	summary, err := tracker.GetSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 0 || summary.SuppressedPct != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestGetRecent(t *testing.T) {
	tracker := newTestTracker(t)

	_ = tracker.Track(Record{Inquiry: "f1", Declared: 1, Parsed: 1})
	_ = tracker.Track(Record{Inquiry: "f2", Declared: 1, Parsed: 1})
	_ = tracker.Track(Record{Inquiry: "f3", Declared: 1, Parsed: 1})

	recent, err := tracker.GetRecent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	// Most recent first
	if recent[0].Inquiry != "f3" {
		t.Errorf("first = %q", recent[0].Inquiry)
	}
	if recent[0].Verdict != VerdictOK {
		t.Errorf("verdict = %q", recent[0].Verdict)
	}
}

func TestGetByVerdict(t *testing.T) {
	tracker := newTestTracker(t)

	tracker.Track(Record{Inquiry: "f"})
	tracker.Track(Record{Inquiry: "f", Verdict: "parse_failure"})
	tracker.Track(Record{Inquiry: "g"})

	got, err := tracker.GetByVerdict()
	if err != nil {
		t.Fatalf("by verdict: %v", err)
	}
	want := []VerdictCount{{"ok", 2}, {"parse_failure", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("by verdict mismatch (-want +got):\n%s", diff)
	}
}

func TestGetByInquiry(t *testing.T) {
	tracker := newTestTracker(t)

	tracker.Track(Record{Inquiry: "load", Declared: 3, Suppressed: 1})
	tracker.Track(Record{Inquiry: "load", Declared: 3, Suppressed: 2, Verdict: "count_mismatch"})
	tracker.Track(Record{Inquiry: "save", Declared: 1})

	got, err := tracker.GetByInquiry(5)
	if err != nil {
		t.Fatalf("by inquiry: %v", err)
	}
	want := []InquiryStats{
		{Inquiry: "load", Calls: 2, Failures: 1, Slots: 6, Suppressed: 3},
		{Inquiry: "save", Calls: 1, Failures: 0, Slots: 1, Suppressed: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("by inquiry mismatch (-want +got):\n%s", diff)
	}
}

func TestDBPath(t *testing.T) {
	t.Setenv("TILDE_DB_PATH", "/custom/path.db")
	if got := DBPath(""); got != "/custom/path.db" {
		t.Errorf("got %q", got)
	}

	t.Setenv("TILDE_DB_PATH", "")
	if got := DBPath("/config/path.db"); got != "/config/path.db" {
		t.Errorf("got %q", got)
	}
}
