package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/edouard-claude/tilde/internal/callsite"
	"github.com/edouard-claude/tilde/internal/stack"
	"github.com/edouard-claude/tilde/internal/tee"
	"github.com/edouard-claude/tilde/internal/tracking"
)

// Pipeline orchestrates detection, tee and tracking.
type Pipeline struct {
	Options   callsite.Options
	Lines     callsite.LineReader
	History   callsite.HistoryReader // used when a stack records no history
	Tracker   *tracking.Tracker
	TeeConfig tee.Config
	Logger    *zap.Logger
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Name      string
	Inquiry   string
	Declared  int
	Detection *callsite.Detection
	Err       error
	Hint      string // diagnostic file hint from tee
}

// OK reports whether the detection succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Verdict returns "ok" or the error kind name.
func (o Outcome) Verdict() string {
	if o.Err == nil {
		return tracking.VerdictOK
	}
	if k := callsite.KindOf(o.Err); k != 0 {
		return k.String()
	}
	return "error"
}

// Detect resolves the caller recorded in s for declared outputs.
func (p *Pipeline) Detect(s *stack.Stack, declared int) Outcome {
	history := p.History
	if s.History != "" || history == nil {
		history = s.HistoryReader()
	}

	d := &callsite.Detector{
		Frames:  s.Resolver(),
		Lines:   p.Lines,
		History: history,
		Guard:   s.Guard(),
		Options: p.Options,
		Logger:  p.logger(),
	}

	inquiry := ""
	if len(s.Frames) > 1 {
		inquiry = s.Frames[1].Function
	}

	timed := tracking.Start(p.Tracker)
	det, err := d.Detect(declared)
	out := Outcome{Name: s.Name, Inquiry: inquiry, Declared: declared, Detection: det, Err: err}
	p.finish(&out, timed)
	return out
}

// CheckLine runs detection on a literal caller line.
func (p *Pipeline) CheckLine(line, function string, declared int) Outcome {
	timed := tracking.Start(p.Tracker)
	det, err := callsite.CheckLine(line, function, declared, p.Options)
	out := Outcome{Name: function, Inquiry: function, Declared: declared, Detection: det, Err: err}
	p.finish(&out, timed)
	return out
}

// Batch runs Detect over stacks. A stack's own nargout wins over declared.
func (p *Pipeline) Batch(stacks []*stack.Stack, declared int) []Outcome {
	outcomes := make([]Outcome, 0, len(stacks))
	for _, s := range stacks {
		n := declared
		if s.Nargout != nil {
			n = *s.Nargout
		}
		outcomes = append(outcomes, p.Detect(s, n))
	}
	return outcomes
}

func (p *Pipeline) finish(out *Outcome, timed *tracking.TimedExecution) {
	log := p.logger()
	rec, rep := p.describe(out)

	// Tee: save a diagnostic if needed
	out.Hint = tee.MaybeSave(rep, !out.OK(), p.TeeConfig)

	if err := timed.Track(rec); err != nil {
		log.Warn("tracking error", zap.Error(err))
	}

	if out.OK() {
		log.Info("detection ok",
			zap.String("name", out.Name),
			zap.Bools("is_tilde", out.Detection.IsTilde))
	} else {
		log.Info("detection failed",
			zap.String("name", out.Name),
			zap.String("verdict", rec.Verdict))
	}
}

func (p *Pipeline) describe(out *Outcome) (tracking.Record, tee.Report) {
	rec := tracking.Record{
		Inquiry:  out.Inquiry,
		Declared: out.Declared,
		Verdict:  out.Verdict(),
	}
	rep := tee.Report{
		Inquiry:  out.Inquiry,
		Declared: out.Declared,
		Verdict:  rec.Verdict,
	}

	var frame callsite.Frame
	if det := out.Detection; det != nil {
		frame = det.Frame
		rec.Parsed = len(det.Result.OutNames)
		rec.Suppressed = det.Result.Suppressed()
		rep.Line = det.Line
		rep.IsTilde = det.IsTilde
		res := det.Result
		rep.Components = &res
	}
	var de *callsite.Error
	if errors.As(out.Err, &de) {
		frame = de.Frame
		rep.Line = de.Line
	}
	if out.Err != nil {
		rep.Error = out.Err.Error()
	}

	rec.File, rec.Function, rec.Line = frame.File, frame.Function, frame.Line
	rep.Frame = frame
	return rec, rep
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
