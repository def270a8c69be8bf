package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/edouard-claude/tilde/internal/extract"
)

const scanScript = `% [ignored, ~] = myFunc()
x = 1;
[mst(1), ~, ~, data] = myFunc(x);
y = myFunc(x);
[p, q] = other(1); [r, ~] = myFunc(2)
[a, ~] = twice(); [b] = twice();
`

func TestScan(t *testing.T) {
	path := writeScript(t, scanScript)

	hits, err := Scan(path, "", extract.DefaultOptions())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	type brief struct {
		Line     int
		Function string
		Names    []string
	}
	var got []brief
	for _, h := range hits {
		got = append(got, brief{h.Line, h.Function, h.Result.OutNames})
	}
	want := []brief{
		{3, "myFunc", []string{"mst", "~", "~", "data"}},
		{5, "other", []string{"p", "q"}},
		{5, "myFunc", []string{"r", "~"}},
		{6, "twice", nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("hits mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(hits[3].Err, extract.ErrMultipleInvocation) {
		t.Errorf("hits[3].Err = %v", hits[3].Err)
	}
}

func TestScanFiltered(t *testing.T) {
	path := writeScript(t, scanScript)

	hits, err := Scan(path, "other", extract.DefaultOptions())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(hits) != 1 || hits[0].Line != 5 {
		t.Errorf("hits = %+v", hits)
	}
}

func TestScanMissing(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope.m"), "", extract.DefaultOptions()); err == nil {
		t.Fatal("expected error")
	}
}
