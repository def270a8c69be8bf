package callsite

import (
	"fmt"
	"path/filepath"
)

// Function names reported for callers that are not source files.
const (
	InteractiveFunction = "<interactive>"
	UnknownFunction     = "<unknown>"
)

// Frame describes one level of the call stack.
type Frame struct {
	// File is the path of the source file, empty when the frame has none.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Function is the name of the function executing in this frame.
	Function string `json:"function" yaml:"function"`

	// Line is the 1-based line number, or zero if undefined.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// String formats the frame as "file:line (function)", omitting unknown parts.
func (f Frame) String() string {
	switch {
	case f.File != "" && f.Line > 0:
		return fmt.Sprintf("%s:%d (%s)", f.File, f.Line, f.Function)
	case f.File != "":
		return fmt.Sprintf("%s (%s)", f.File, f.Function)
	default:
		return f.Function
	}
}

// plainSource reports whether the frame points at a readable line of a
// source file with one of the allowed extensions. An empty list allows any.
func (f Frame) plainSource(extensions []string) bool {
	if f.File == "" || f.Line <= 0 {
		return false
	}
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(f.File)
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
