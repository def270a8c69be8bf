// Package source provides file- and history-backed collaborators for callsite.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/edouard-claude/tilde/internal/callsite"
)

// ErrNoHistory is returned when a history holds no entries.
var ErrNoHistory = errors.New("command history is empty")

// FileLineReader reads single lines from files on disk.
type FileLineReader struct{}

// ReadLine returns the 1-based line of path without its line terminator.
func (FileLineReader) ReadLine(path string, line int) (string, error) {
	if line <= 0 {
		return "", fmt.Errorf("read %s: invalid line %d", path, line)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		if n == line {
			return strings.TrimRight(sc.Text(), "\r"), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return "", fmt.Errorf("read %s: line %d past end of file", path, line)
}

// HistoryFile reads the last non-empty line of a plain-text history file.
type HistoryFile struct {
	Path string
}

// LastEntry returns the most recent command.
func (h HistoryFile) LastEntry() (string, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i], nil
		}
	}
	return "", ErrNoHistory
}

// StaticHistory is a history holding exactly one entry.
type StaticHistory string

// LastEntry returns the entry, or ErrNoHistory when it is empty.
func (s StaticHistory) LastEntry() (string, error) {
	if s == "" {
		return "", ErrNoHistory
	}
	return string(s), nil
}

// AlwaysSafe is the guard for hosts without a stepping debugger.
var AlwaysSafe = callsite.GuardFunc(func(callsite.Frame, []callsite.Frame) bool { return true })

// ExecutingLine guards against reading a line other than the one a
// debugger reports as executing. Zero means no debugger position is known.
type ExecutingLine int

// Safe reports whether frame sits on the executing line, and when a stack
// is given, whether the frame is still its caller entry.
func (e ExecutingLine) Safe(frame callsite.Frame, stack []callsite.Frame) bool {
	if e != 0 && frame.Line != int(e) {
		return false
	}
	if stack == nil {
		return true
	}
	return len(stack) >= 3 && stack[2] == frame
}
