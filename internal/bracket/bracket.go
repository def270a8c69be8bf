// Package bracket computes nesting depth and top-level spans for a bracket pair.
package bracket

// Span is a top-level bracket pair: Start is the opening byte, End the matching close.
type Span struct {
	Start int
	End   int
}

// Profile holds the nesting profile of a string for one bracket pair.
type Profile struct {
	// Levels[i] is the depth after applying byte i. An opener raises the
	// depth at its own position, a closer lowers it at its own position.
	Levels []int
	// Spans lists every 0→1 ... 1→0 region, left to right.
	Spans []Span
}

// Scan computes the nesting profile of text for the open/close pair.
// Malformed input is reported as is: depth may go negative or end above zero.
func Scan(text string, open, close byte) Profile {
	s := Profile{Levels: make([]int, len(text))}
	depth := 0
	start := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
			if depth == 1 {
				start = i
			}
		case close:
			depth--
			if depth == 0 && start >= 0 {
				s.Spans = append(s.Spans, Span{Start: start, End: i})
				start = -1
			}
		}
		s.Levels[i] = depth
	}
	return s
}

// Balanced reports whether depth never went negative and ended at zero.
func (s Profile) Balanced() bool {
	for _, l := range s.Levels {
		if l < 0 {
			return false
		}
	}
	return len(s.Levels) == 0 || s.Levels[len(s.Levels)-1] == 0
}

// MatchOpen returns the position of the opener paired with the closer at
// position close, walking the profile right to left, or -1 when the closer
// has no opener.
func (s Profile) MatchOpen(close int) int {
	if close <= 0 || close >= len(s.Levels) {
		return -1
	}
	level := s.Levels[close]
	for j := close - 1; j >= 0; j-- {
		if s.Levels[j] <= level {
			return -1
		}
		prev := 0
		if j > 0 {
			prev = s.Levels[j-1]
		}
		if s.Levels[j] == level+1 && prev == level {
			return j
		}
	}
	return -1
}

// Strip removes every top-level open/close span from text, brackets included.
// Unmatched brackets are left in place.
func Strip(text string, open, close byte) string {
	s := Scan(text, open, close)
	if len(s.Spans) == 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	prev := 0
	for _, sp := range s.Spans {
		out = append(out, text[prev:sp.Start]...)
		prev = sp.End + 1
	}
	out = append(out, text[prev:]...)
	return string(out)
}
