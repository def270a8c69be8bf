package callsite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edouard-claude/tilde/internal/extract"
)

// Kind classifies a detection failure.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNoEnclosingFunction
	KindUnexpectedInternal
	KindUnsupportedSource
	KindDebugMismatch
	KindMultipleInvocation
	KindInquiryNotFound
	KindParseFailure
	KindUnsupportedExpansion
	KindCountMismatch
)

var kindNames = map[Kind]string{
	KindInvalidInput:         "invalid_input",
	KindNoEnclosingFunction:  "no_enclosing_function",
	KindUnexpectedInternal:   "unexpected_internal_error",
	KindUnsupportedSource:    "unsupported_source",
	KindDebugMismatch:        "debug_mismatch",
	KindMultipleInvocation:   "multiple_invocation",
	KindInquiryNotFound:      "inquiry_function_not_found",
	KindParseFailure:         "parse_failure",
	KindUnsupportedExpansion: "unsupported_expansion",
	KindCountMismatch:        "count_mismatch",
}

// String returns the stable snake_case name used in reports and the tracker.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors, one per Kind. Match with errors.Is.
var (
	ErrInvalidInput         = errors.New("declared output count must be a non-negative integer")
	ErrNoEnclosingFunction  = errors.New("must be called from within a function")
	ErrUnexpectedInternal   = errors.New("no usable call stack")
	ErrUnsupportedSource    = errors.New("caller is not a plain source file")
	ErrDebugMismatch        = errors.New("inspected line is not the executing line")
	ErrMultipleInvocation   = extract.ErrMultipleInvocation
	ErrInquiryNotFound      = errors.New("inquiry function not found on caller line")
	ErrParseFailure         = errors.New("no bracketed output list for multiple outputs")
	ErrUnsupportedExpansion = errors.New("output list expands to an undeterminable number of outputs")
	ErrCountMismatch        = errors.New("parsed output count differs from declared count")
)

var sentinels = map[Kind]error{
	KindInvalidInput:         ErrInvalidInput,
	KindNoEnclosingFunction:  ErrNoEnclosingFunction,
	KindUnexpectedInternal:   ErrUnexpectedInternal,
	KindUnsupportedSource:    ErrUnsupportedSource,
	KindDebugMismatch:        ErrDebugMismatch,
	KindMultipleInvocation:   ErrMultipleInvocation,
	KindInquiryNotFound:      ErrInquiryNotFound,
	KindParseFailure:         ErrParseFailure,
	KindUnsupportedExpansion: ErrUnsupportedExpansion,
	KindCountMismatch:        ErrCountMismatch,
}

// Error is a detection failure carrying the caller context that produced it.
type Error struct {
	Kind   Kind
	Line   string
	Frame  Frame
	Detail string
	Err    error // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(sentinels[e.Kind].Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if loc := e.Frame.String(); loc != "" {
		b.WriteString(" at ")
		b.WriteString(loc)
	}
	if e.Line != "" {
		fmt.Fprintf(&b, "\n  line: %s", strings.TrimSpace(e.Line))
	}
	return b.String()
}

// Unwrap exposes both the sentinel for the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{sentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, frame Frame, line, detail string) *Error {
	return &Error{Kind: kind, Frame: frame, Line: line, Detail: detail}
}

// KindOf returns the Kind of err, or 0 when err is not a detection error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
