package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/edouard-claude/tilde/internal/extract"
)

// Hit is one "[...] = f(" call found by Scan.
type Hit struct {
	Line     int            `json:"line"`
	Function string         `json:"function"`
	Text     string         `json:"text"`
	Result   extract.Result `json:"components"`
	Err      error          `json:"-"`
}

// Scan reports every bracketed binding call in the file at path. When
// function is set only calls to it are reported. Comment lines are skipped.
func Scan(path, function string, opts extract.Options) ([]Hit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer f.Close()

	var hits []Hit
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimRight(sc.Text(), "\r")
		if isComment(text) {
			continue
		}
		for _, name := range extract.Candidates(text) {
			if function != "" && name != function {
				continue
			}
			res, err := extract.Extract(text, name, opts)
			if err == nil && !res.Found() {
				continue
			}
			hits = append(hits, Hit{Line: n, Function: name, Text: text, Result: res, Err: err})
		}
	}
	if err := sc.Err(); err != nil {
		return hits, fmt.Errorf("scan %s: %w", path, err)
	}
	return hits, nil
}

func isComment(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "%") || strings.HasPrefix(t, "#")
}
