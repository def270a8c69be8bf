package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/edouard-claude/tilde/internal/callsite"
	"github.com/edouard-claude/tilde/internal/engine"
	"github.com/edouard-claude/tilde/internal/extract"
	"github.com/edouard-claude/tilde/internal/utils"
)

// outcomeView is the JSON form of an engine.Outcome.
type outcomeView struct {
	Name       string          `json:"name,omitempty"`
	Inquiry    string          `json:"inquiry,omitempty"`
	Declared   int             `json:"declared"`
	Verdict    string          `json:"verdict"`
	IsTilde    []bool          `json:"is_tilde"`
	Line       string          `json:"line,omitempty"`
	Frame      *callsite.Frame `json:"frame,omitempty"`
	Components *extract.Result `json:"components,omitempty"`
	Error      string          `json:"error,omitempty"`
	Diagnostic string          `json:"diagnostic,omitempty"`
}

func viewOf(out engine.Outcome) outcomeView {
	v := outcomeView{
		Name:       out.Name,
		Inquiry:    out.Inquiry,
		Declared:   out.Declared,
		Verdict:    out.Verdict(),
		IsTilde:    []bool{},
		Diagnostic: out.Hint,
	}
	if det := out.Detection; det != nil {
		v.IsTilde = det.IsTilde
		v.Line = det.Line
		frame := det.Frame
		v.Frame = &frame
		res := det.Result
		v.Components = &res
	}
	if out.Err != nil {
		v.Error = out.Err.Error()
	}
	return v
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderOutcomes prints outcomes as text, or as a JSON array when asJSON is set.
// A single outcome is printed as a JSON object.
func RenderOutcomes(w io.Writer, outcomes []engine.Outcome, asJSON bool) error {
	if asJSON {
		views := make([]outcomeView, len(outcomes))
		for i, out := range outcomes {
			views[i] = viewOf(out)
		}
		if len(views) == 1 {
			return WriteJSON(w, views[0])
		}
		return WriteJSON(w, views)
	}

	for i, out := range outcomes {
		if len(outcomes) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, render(HeaderStyle, out.Name))
		}
		renderOutcome(w, out)
	}
	return nil
}

func renderOutcome(w io.Writer, out engine.Outcome) {
	if !out.OK() {
		fmt.Fprintf(w, "%s %s\n", render(ErrorStyle, out.Verdict()+":"), out.Err)
		if out.Hint != "" {
			fmt.Fprintln(w, render(DimStyle, out.Hint))
		}
		return
	}

	det := out.Detection
	fmt.Fprintln(w, render(SuccessStyle, utils.FormatBools(det.IsTilde)))
	if det.Frame.Function != "" {
		fmt.Fprintf(w, "  %s %s\n", render(DimStyle, "caller"), det.Frame)
	}
	if det.Line != "" {
		fmt.Fprintf(w, "  %s %s\n", render(DimStyle, "line  "), strings.TrimSpace(det.Line))
	}
	if det.Result.Found() {
		fmt.Fprintf(w, "  %s %s\n", render(DimStyle, "slots "), formatSlots(det.Result.OutNames, det.IsTilde))
	}
	if out.Hint != "" {
		fmt.Fprintln(w, render(DimStyle, out.Hint))
	}
}

func formatSlots(names []string, tilde []bool) string {
	parts := make([]string, len(names))
	for i, n := range names {
		if i < len(tilde) && tilde[i] {
			parts[i] = render(WarnStyle, n)
		} else {
			parts[i] = n
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// hitView is the JSON form of an engine.Hit.
type hitView struct {
	engine.Hit
	Error string `json:"error,omitempty"`
}

// RenderHits prints scan results for path as a table or JSON.
func RenderHits(w io.Writer, path string, hits []engine.Hit, asJSON bool) error {
	if asJSON {
		views := make([]hitView, len(hits))
		for i, h := range hits {
			views[i] = hitView{Hit: h}
			if h.Err != nil {
				views[i].Error = h.Err.Error()
			}
		}
		return WriteJSON(w, map[string]any{"file": path, "hits": views})
	}

	if len(hits) == 0 {
		fmt.Fprintln(w, render(DimStyle, "no bracketed calls in "+path))
		return nil
	}

	headers := []string{"Line", "Function", "Outputs", "Suppressed"}
	var rows [][]string
	for _, h := range hits {
		outputs := formatSlots(h.Result.OutNames, h.Result.IsTilde)
		suppressed := fmt.Sprintf("%d/%d", h.Result.Suppressed(), len(h.Result.OutNames))
		if h.Err != nil {
			outputs = render(ErrorStyle, utils.Truncate(h.Err.Error(), 48))
			suppressed = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", h.Line),
			h.Function,
			outputs,
			suppressed,
		})
	}
	fmt.Fprint(w, FormatTable(headers, rows))
	return nil
}
