package stack

import (
	"path/filepath"
	"strings"

	"github.com/edouard-claude/tilde/internal/callsite"
	"github.com/edouard-claude/tilde/internal/source"
)

// Stack is a recorded call stack, innermost frame first, with the context
// a host would otherwise supply at detection time.
type Stack struct {
	Name      string           `yaml:"name"`
	Frames    []callsite.Frame `yaml:"frames"`
	History   string           `yaml:"history,omitempty"`   // last interactive command
	Executing int              `yaml:"executing,omitempty"` // debugger line, 0 if none
	Nargout   *int             `yaml:"nargout,omitempty"`   // declared outputs for batch runs
}

// Resolver returns a frame resolver replaying the recorded frames.
func (s *Stack) Resolver() callsite.FrameResolver {
	frames := append([]callsite.Frame(nil), s.Frames...)
	return callsite.FramesFunc(func() ([]callsite.Frame, error) {
		return append([]callsite.Frame(nil), frames...), nil
	})
}

// HistoryReader returns the recorded interactive history.
func (s *Stack) HistoryReader() callsite.HistoryReader {
	return source.StaticHistory(s.History)
}

// Guard returns a guard pinned to the recorded executing line.
func (s *Stack) Guard() callsite.ContextGuard {
	return source.ExecutingLine(s.Executing)
}

// Synthetic builds the three-frame stack of a script calling function at
// file:line. The caller is named after the file.
func Synthetic(file string, line int, function string) *Stack {
	caller := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return &Stack{
		Name: function,
		Frames: []callsite.Frame{
			{Function: "tilde"},
			{Function: function},
			{File: file, Function: caller, Line: line},
		},
	}
}
