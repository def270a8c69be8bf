package display

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edouard-claude/tilde/internal/tracking"
)

func newTestTracker(t *testing.T) *tracking.Tracker {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	tracker, err := tracking.NewTracker(dbPath)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	t.Cleanup(func() { tracker.Close() })
	return tracker
}

func seed(t *testing.T, tracker *tracking.Tracker) {
	t.Helper()
	records := []tracking.Record{
		{File: "/src/a.m", Function: "a", Line: 3, Inquiry: "myFunc", Declared: 4, Parsed: 4, Suppressed: 2},
		{File: "/src/b.m", Function: "b", Line: 9, Inquiry: "myFunc", Declared: 2, Parsed: 3, Verdict: "count_mismatch"},
		{Function: "<interactive>", Inquiry: "load", Declared: 1, Parsed: 0},
	}
	for _, r := range records {
		if err := tracker.Track(r); err != nil {
			t.Fatalf("track: %v", err)
		}
	}
}

func TestRunStatsNoData(t *testing.T) {
	SetColor("never")
	t.Cleanup(func() { SetColor("auto") })

	var buf bytes.Buffer
	if err := RunStats(&buf, newTestTracker(t), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Detections") {
		t.Errorf("missing summary:\n%s", buf.String())
	}
}

func TestRunStatsWithData(t *testing.T) {
	SetColor("never")
	t.Cleanup(func() { SetColor("auto") })

	tracker := newTestTracker(t)
	seed(t, tracker)

	var buf bytes.Buffer
	if err := RunStats(&buf, tracker, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"count_mismatch", "myFunc", "load", "2/6"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRunStatsRecent(t *testing.T) {
	SetColor("never")
	t.Cleanup(func() { SetColor("auto") })

	tracker := newTestTracker(t)
	seed(t, tracker)

	var buf bytes.Buffer
	if err := RunStats(&buf, tracker, []string{"--recent", "2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 { // header + separator + 2 rows
		t.Errorf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(buf.String(), "/src/b.m:9") {
		t.Errorf("missing caller:\n%s", buf.String())
	}
}

func TestRunStatsJSON(t *testing.T) {
	tracker := newTestTracker(t)
	seed(t, tracker)

	var buf bytes.Buffer
	if err := RunStats(&buf, tracker, []string{"--json"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Summary   tracking.Summary        `json:"summary"`
		ByVerdict []tracking.VerdictCount `json:"by_verdict"`
		ByInquiry []tracking.InquiryStats `json:"by_inquiry"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.Summary.Total != 3 || got.Summary.Failures != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if len(got.ByInquiry) != 2 || got.ByInquiry[0].Inquiry != "myFunc" {
		t.Errorf("by inquiry = %+v", got.ByInquiry)
	}
}

func TestRunStatsBadFlag(t *testing.T) {
	if err := RunStats(&bytes.Buffer{}, newTestTracker(t), []string{"--bogus"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunStatsNilTracker(t *testing.T) {
	if err := RunStats(&bytes.Buffer{}, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunStatsNilTrackerJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RunStats(&buf, nil, []string{"--json"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Summary   *tracking.Summary       `json:"summary"`
		ByVerdict []tracking.VerdictCount `json:"by_verdict"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.Summary == nil || got.Summary.Total != 0 || got.ByVerdict == nil {
		t.Errorf("got %+v", got)
	}
}
