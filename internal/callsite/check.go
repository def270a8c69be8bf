package callsite

import (
	"fmt"
	"strings"

	"github.com/edouard-claude/tilde/internal/extract"
)

// Check cross-checks an extraction against the number of outputs the
// caller requested and returns the suppression flag of every slot.
func Check(declared int, res extract.Result, frame Frame, line string) ([]bool, error) {
	if declared < 0 {
		return nil, newError(KindInvalidInput, frame, line, fmt.Sprintf("got %d", declared))
	}

	if !res.Found() && declared != 0 {
		switch {
		case !res.InquiryDetected:
			// Most likely reached through feval, cellfun or a handle.
			return nil, newError(KindInquiryNotFound, frame, line, "")
		case declared == 1:
			// A lone output cannot be suppressed without brackets.
			return []bool{false}, nil
		default:
			return nil, newError(KindParseFailure, frame, line, fmt.Sprintf("%d outputs declared", declared))
		}
	}

	if declared != len(res.OutNames) {
		if strings.ContainsAny(res.RawOut, "{.") {
			return nil, newError(KindUnsupportedExpansion, frame, line,
				fmt.Sprintf("%q binds %d outputs", res.RawOut, declared))
		}
		return nil, newError(KindCountMismatch, frame, line,
			fmt.Sprintf("parsed %d, declared %d", len(res.OutNames), declared))
	}

	flags := make([]bool, len(res.IsTilde))
	copy(flags, res.IsTilde)
	return flags, nil
}
