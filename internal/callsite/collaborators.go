package callsite

// FrameResolver returns the current call stack, innermost frame first.
// Index 0 is the detector itself, 1 the inquiry function, 2 its caller.
type FrameResolver interface {
	Frames() ([]Frame, error)
}

// LineReader returns the text of a 1-based line of a file.
type LineReader interface {
	ReadLine(path string, line int) (string, error)
}

// HistoryReader returns the most recent interactive command.
type HistoryReader interface {
	LastEntry() (string, error)
}

// ContextGuard decides whether the line about to be read is the one being
// executed. It is consulted once with only the frame and once with the full
// stack after the line has been read.
type ContextGuard interface {
	Safe(frame Frame, stack []Frame) bool
}

// FramesFunc adapts a function to FrameResolver.
type FramesFunc func() ([]Frame, error)

// Frames calls f.
func (f FramesFunc) Frames() ([]Frame, error) { return f() }

// GuardFunc adapts a function to ContextGuard.
type GuardFunc func(frame Frame, stack []Frame) bool

// Safe calls g.
func (g GuardFunc) Safe(frame Frame, stack []Frame) bool { return g(frame, stack) }
