package callsite

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edouard-claude/tilde/internal/extract"
)

// Resolution is the caller line and its parsed binding list.
type Resolution struct {
	Line   string         `json:"line"`
	Frame  Frame          `json:"frame"`
	Result extract.Result `json:"components"`
}

// Resolve locates the line that called the inquiry function and extracts
// its output list.
func (d *Detector) Resolve() (Resolution, error) {
	log := d.logger()

	if d.Frames == nil {
		return Resolution{}, newError(KindUnexpectedInternal, Frame{}, "", "no frame resolver")
	}
	stack, err := d.Frames.Frames()
	if err != nil {
		e := newError(KindUnexpectedInternal, Frame{}, "", "")
		e.Err = err
		return Resolution{}, e
	}

	switch {
	case len(stack) >= 3:
		return d.resolveFile(stack)
	case len(stack) == 2:
		log.Debug("no caller frame, reading interactive history",
			zap.String("inquiry", stack[1].Function))
		return d.resolveHistory(stack[1].Function)
	case len(stack) == 1:
		return Resolution{}, newError(KindNoEnclosingFunction, stack[0], "", "")
	default:
		return Resolution{}, newError(KindUnexpectedInternal, Frame{}, "", "empty stack")
	}
}

func (d *Detector) resolveFile(stack []Frame) (Resolution, error) {
	frame := stack[2]
	inquiry := stack[1].Function
	opts := d.options()

	if !frame.plainSource(opts.SourceExtensions) {
		return Resolution{}, newError(KindUnsupportedSource, frame, "", "")
	}
	if !d.guard().Safe(frame, nil) {
		return Resolution{}, newError(KindDebugMismatch, frame, "", "")
	}
	if d.Lines == nil {
		return Resolution{}, newError(KindUnexpectedInternal, frame, "", "no line reader")
	}

	line, err := d.Lines.ReadLine(frame.File, frame.Line)
	if err != nil {
		e := newError(KindUnsupportedSource, frame, "", "read caller line")
		e.Err = err
		return Resolution{}, e
	}

	// The debugger may have moved on while the line was read.
	if !d.guard().Safe(frame, stack) {
		return Resolution{}, newError(KindDebugMismatch, frame, line, "")
	}

	d.logger().Debug("caller line read",
		zap.String("file", frame.File),
		zap.Int("line", frame.Line),
		zap.String("inquiry", inquiry))

	res, err := d.extract(line, inquiry, frame)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Line: line, Frame: frame, Result: res}, nil
}

func (d *Detector) resolveHistory(inquiry string) (Resolution, error) {
	frame := Frame{Function: InteractiveFunction}
	if d.History == nil {
		return Resolution{}, newError(KindUnsupportedSource, frame, "", "no command history")
	}
	line, err := d.History.LastEntry()
	if err != nil {
		e := newError(KindUnsupportedSource, frame, "", "read command history")
		e.Err = err
		return Resolution{}, e
	}

	res, err := d.extract(line, inquiry, frame)
	if err != nil {
		return Resolution{}, err
	}
	if !res.Found() && !res.InquiryDetected {
		frame.Function = UnknownFunction
	}
	return Resolution{Line: line, Frame: frame, Result: res}, nil
}

func (d *Detector) extract(line, inquiry string, frame Frame) (extract.Result, error) {
	res, err := extract.Extract(line, inquiry, d.options().Extract)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, extract.ErrMultipleInvocation):
		return res, newError(KindMultipleInvocation, frame, line, fmt.Sprintf("%q", inquiry))
	default:
		e := newError(KindUnexpectedInternal, frame, line, "")
		e.Err = err
		return res, e
	}
}
