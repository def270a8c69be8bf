// Package callsite works out which output slots the caller of an inquiry
// function suppresses, by reading and parsing the calling line.
package callsite

import (
	"go.uber.org/zap"

	"github.com/edouard-claude/tilde/internal/extract"
)

// Options configures parsing and source acceptance.
type Options struct {
	Extract          extract.Options
	SourceExtensions []string // accepted caller file extensions, empty accepts all
}

// DefaultOptions returns the "~" token, "\" escape and ".m" sources.
func DefaultOptions() Options {
	return Options{
		Extract:          extract.DefaultOptions(),
		SourceExtensions: []string{".m"},
	}
}

// Detector resolves the caller line through injected collaborators.
// Guard and Logger may be nil.
type Detector struct {
	Frames  FrameResolver
	Lines   LineReader
	History HistoryReader
	Guard   ContextGuard
	Options Options
	Logger  *zap.Logger
}

// Detection is the outcome of a successful Detect.
type Detection struct {
	IsTilde []bool         `json:"is_tilde"`
	Line    string         `json:"line"`
	Frame   Frame          `json:"frame"`
	Result  extract.Result `json:"components"`
}

// Detect returns, for each of the declared outputs, whether the caller
// bound it to the suppression token.
func (d *Detector) Detect(declared int) (*Detection, error) {
	if declared < 0 {
		return nil, newError(KindInvalidInput, Frame{}, "", "")
	}

	r, err := d.Resolve()
	if err != nil {
		d.logger().Debug("resolve failed", zap.Error(err))
		return nil, err
	}

	flags, err := Check(declared, r.Result, r.Frame, r.Line)
	if err != nil {
		d.logger().Debug("consistency check failed",
			zap.Int("declared", declared),
			zap.Strings("outputs", r.Result.OutNames),
			zap.Error(err))
		return nil, err
	}

	d.logger().Debug("detected",
		zap.String("frame", r.Frame.String()),
		zap.Bools("is_tilde", flags))
	return &Detection{IsTilde: flags, Line: r.Line, Frame: r.Frame, Result: r.Result}, nil
}

// CheckLine runs extraction and the consistency check on a literal line,
// without any call stack.
func CheckLine(line, function string, declared int, opts Options) (*Detection, error) {
	d := &Detector{Options: opts}
	if declared < 0 {
		return nil, newError(KindInvalidInput, Frame{}, line, "")
	}
	frame := Frame{Function: function}
	res, err := d.extract(line, function, frame)
	if err != nil {
		return nil, err
	}
	flags, err := Check(declared, res, frame, line)
	if err != nil {
		return nil, err
	}
	return &Detection{IsTilde: flags, Line: line, Frame: frame, Result: res}, nil
}

func (d *Detector) options() Options {
	if d.Options.Extract.Token == "" {
		opts := DefaultOptions()
		if d.Options.SourceExtensions != nil {
			opts.SourceExtensions = d.Options.SourceExtensions
		}
		return opts
	}
	return d.Options
}

func (d *Detector) guard() ContextGuard {
	if d.Guard == nil {
		return GuardFunc(func(Frame, []Frame) bool { return true })
	}
	return d.Guard
}

func (d *Detector) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
