package display

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/edouard-claude/tilde/internal/tracking"
	"github.com/edouard-claude/tilde/internal/utils"
)

// RunStats executes the stats (detection history report) command.
// A nil tracker yields an empty report.
func RunStats(w io.Writer, tracker *tracking.Tracker, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	showJSON := fs.Bool("json", false, "print the report as JSON")
	topN := fs.Int("top", 10, "number of inquiry functions to list")
	recentN := fs.Int("recent", 0, "list the last N detections instead")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	if tracker == nil {
		if *showJSON {
			return exportJSON(w, &tracking.Summary{}, nil, *topN)
		}
		PrintError("no tracking data (tracking disabled)")
		return nil
	}

	summary, err := tracker.GetSummary()
	if err != nil {
		return fmt.Errorf("get summary: %w", err)
	}

	if *showJSON {
		return exportJSON(w, summary, tracker, *topN)
	}
	if *recentN > 0 {
		return showRecent(w, tracker, *recentN)
	}

	printSummary(w, summary)
	if err := showByVerdict(w, tracker); err != nil {
		return err
	}
	return showByInquiry(w, tracker, *topN)
}

func printSummary(w io.Writer, s *tracking.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, render(HeaderStyle, "  tilde detection report"))
	fmt.Fprintln(w, render(DimStyle, "  "+FormatSeparator(30)))
	fmt.Fprintln(w)

	printKPI := func(label, value string) {
		fmt.Fprintf(w, "  %s  %s\n", render(DimStyle, fmt.Sprintf("%-20s", label)), render(StatStyle, value))
	}

	printKPI("Detections", fmt.Sprintf("%d", s.Total))
	printKPI("Failures", fmt.Sprintf("%d", s.Failures))
	printKPI("Output slots", fmt.Sprintf("%d", s.Slots))
	printKPI("Suppressed", fmt.Sprintf("%d (%.1f%%)", s.Suppressed, s.SuppressedPct))
	printKPI("Total time", fmt.Sprintf("%.1fms", float64(s.TotalTimeUs)/1000))

	pct := s.SuppressedPct
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", render(SuccessStyle, FormatBar(int(pct), 100, 20)), render(DimStyle, fmt.Sprintf("%.0f%%", s.SuppressedPct)))
	fmt.Fprintln(w)
}

func showByVerdict(w io.Writer, tracker *tracking.Tracker) error {
	counts, err := tracker.GetByVerdict()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	fmt.Fprintln(w, render(DimStyle, "  Verdicts"))
	fmt.Fprintln(w)

	var rows [][]string
	for _, c := range counts {
		verdict := c.Verdict
		if verdict == tracking.VerdictOK {
			verdict = render(SuccessStyle, verdict)
		} else {
			verdict = render(ErrorStyle, verdict)
		}
		rows = append(rows, []string{verdict, fmt.Sprintf("%d", c.Count)})
	}
	fmt.Fprint(w, FormatTable([]string{"Verdict", "Count"}, rows))
	fmt.Fprintln(w)
	return nil
}

func showByInquiry(w io.Writer, tracker *tracking.Tracker, limit int) error {
	stats, err := tracker.GetByInquiry(limit)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	maxCalls := 0
	for _, s := range stats {
		if s.Calls > maxCalls {
			maxCalls = s.Calls
		}
	}

	fmt.Fprintln(w, render(DimStyle, "  Top inquiry functions"))
	fmt.Fprintln(w)

	headers := []string{"Inquiry", "Calls", "Failures", "Suppressed", "Share"}
	var rows [][]string
	for _, s := range stats {
		rows = append(rows, []string{
			utils.Truncate(s.Inquiry, 25),
			fmt.Sprintf("%d", s.Calls),
			fmt.Sprintf("%d", s.Failures),
			fmt.Sprintf("%d/%d", s.Suppressed, s.Slots),
			render(SuccessStyle, FormatBar(s.Calls, maxCalls, 12)),
		})
	}

	fmt.Fprint(w, FormatTable(headers, rows))
	fmt.Fprintln(w)
	return nil
}

func showRecent(w io.Writer, tracker *tracking.Tracker, n int) error {
	records, err := tracker.GetRecent(n)
	if err != nil {
		return err
	}

	headers := []string{"Time", "Inquiry", "Caller", "Verdict", "Suppressed"}
	var rows [][]string
	for _, r := range records {
		caller := r.Function
		if r.File != "" {
			caller = fmt.Sprintf("%s:%d", utils.Truncate(r.File, 30), r.Line)
		}
		rows = append(rows, []string{
			r.Timestamp,
			utils.Truncate(r.Inquiry, 20),
			caller,
			r.Verdict,
			fmt.Sprintf("%d/%d", r.Suppressed, r.Declared),
		})
	}

	fmt.Fprint(w, FormatTable(headers, rows))
	return nil
}

func exportJSON(w io.Writer, summary *tracking.Summary, tracker *tracking.Tracker, topN int) error {
	byVerdict := []tracking.VerdictCount{}
	byInquiry := []tracking.InquiryStats{}
	if tracker != nil {
		if v, err := tracker.GetByVerdict(); err == nil && v != nil {
			byVerdict = v
		}
		if q, err := tracker.GetByInquiry(topN); err == nil && q != nil {
			byInquiry = q
		}
	}
	data := map[string]any{
		"summary":    summary,
		"by_verdict": byVerdict,
		"by_inquiry": byInquiry,
	}
	return WriteJSON(w, data)
}
