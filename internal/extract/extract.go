// Package extract parses the output-binding list in front of a call expression.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/edouard-claude/tilde/internal/bracket"
	"github.com/edouard-claude/tilde/internal/utils"
)

// ErrMultipleInvocation is returned when the function name occurs more than
// once, unescaped, on the same line.
var ErrMultipleInvocation = errors.New("function invoked more than once on line")

// ErrEmptyName is returned when no function name is given.
var ErrEmptyName = errors.New("empty function name")

var candidateRe = utils.NewLazyRegex(`\]\s*=\s*([A-Za-z][\w.]*)`)

// Options controls the tokens recognised on a line.
type Options struct {
	Token  string // suppression token
	Escape string // marker that hides the next occurrence from the duplicate count
}

// DefaultOptions returns the tilde token and backslash escape.
func DefaultOptions() Options {
	return Options{Token: "~", Escape: `\`}
}

// Result is the breakdown of one binding list.
type Result struct {
	RawOut          string   `json:"raw_out"`
	ReducedOutput   string   `json:"reduced_output"`
	OutNames        []string `json:"out_names"`
	IsTilde         []bool   `json:"is_tilde"`
	InquiryDetected bool     `json:"inquiry_detected"`
}

// Found reports whether a non-blank bracketed binding list was matched.
func (r Result) Found() bool {
	return strings.TrimSpace(r.RawOut) != ""
}

// Suppressed returns the number of suppressed slots.
func (r Result) Suppressed() int {
	n := 0
	for _, t := range r.IsTilde {
		if t {
			n++
		}
	}
	return n
}

// Extract locates "[...] = name(" on line and splits the bracket contents
// into slot names. A line without a bracketed list yields an empty Result
// with InquiryDetected telling whether name occurs on the line at all.
func Extract(line, name string, opts Options) (Result, error) {
	var res Result
	if name == "" {
		return res, ErrEmptyName
	}

	quoted := regexp.QuoteMeta(name)
	word, err := utils.CachedRegex(`\b` + quoted + `\b`)
	if err != nil {
		return res, fmt.Errorf("compile %q: %w", name, err)
	}
	if n := countUnescaped(line, word, opts.Escape); n > 1 {
		return res, fmt.Errorf("%w: %q found %d times", ErrMultipleInvocation, name, n)
	}

	binding, err := utils.CachedRegex(`\[(.*)\]\s*=\s*\b` + quoted + `\b\s*\(?`)
	if err != nil {
		return res, fmt.Errorf("compile %q: %w", name, err)
	}
	m := binding.FindStringSubmatch(line)
	if m == nil {
		res.InquiryDetected = word.MatchString(line)
		return res, nil
	}
	res.InquiryDetected = true

	res.RawOut = lastGroup(m[1])
	res.ReducedOutput = Reduce(res.RawOut)
	res.OutNames = utils.SplitTrim(res.ReducedOutput, ",")
	res.IsTilde = make([]bool, len(res.OutNames))
	for i, n := range res.OutNames {
		res.IsTilde[i] = n == opts.Token
	}
	return res, nil
}

// Reduce removes parenthesised and braced sub-expressions from an output
// list and normalises its whitespace, so "mst(1),  c{2}" becomes "mst, c".
func Reduce(rawOut string) string {
	s := bracket.Strip(rawOut, '(', ')')
	s = bracket.Strip(s, '{', '}')
	return utils.CollapseSpace(s)
}

// Candidates returns the distinct function names called in "[...] = name"
// position on line, in order of appearance.
func Candidates(line string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range candidateRe.Re().FindAllStringSubmatch(line, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// lastGroup keeps only the right-most top-level [...] group of the greedy
// capture. Literal arrays earlier on the line close at depth zero too, and
// the list bound to the call is always the last one before "=". When the
// brackets do not pair up, the group is the one whose opener matches the
// final closer; without such an opener nothing is returned.
func lastGroup(captured string) string {
	wrapped := "[" + captured + "]"
	p := bracket.Scan(wrapped, '[', ']')
	end := len(wrapped) - 1
	if !p.Balanced() {
		start := p.MatchOpen(end)
		if start < 0 {
			return ""
		}
		return wrapped[start+1 : end]
	}
	last := p.Spans[len(p.Spans)-1]
	return wrapped[last.Start+1 : last.End]
}

func countUnescaped(line string, word *regexp.Regexp, escape string) int {
	n := 0
	for _, loc := range word.FindAllStringIndex(line, -1) {
		if escape != "" && strings.HasSuffix(line[:loc[0]], escape) {
			continue
		}
		n++
	}
	return n
}
