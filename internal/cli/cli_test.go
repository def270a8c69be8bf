package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// setup points config, tracking and tee at a temp dir and captures output.
func setup(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	cfg := fmt.Sprintf(`[tracking]
enabled = true
db_path = %q

[tee]
enabled = true
mode = "failures"
max_files = 5
dir = %q

[display]
color = false
`, filepath.Join(dir, "tracking.db"), filepath.Join(dir, "tee"))
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TILDE_CONFIG", cfgPath)
	t.Setenv("TILDE_DB_PATH", "")
	t.Setenv("TILDE_TEE_DIR", "")

	out = &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, &bytes.Buffer{}
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return dir, out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

type detectJSON struct {
	Name    string `json:"name"`
	Verdict string `json:"verdict"`
	IsTilde []bool `json:"is_tilde"`
}

func TestRunDetectFile(t *testing.T) {
	dir, out := setup(t)
	script := writeFile(t, dir, "script.m", "x = 1;\n[mst(1), ~, ~, data] = myFunc(x);\n")

	code := Run([]string{"tilde", "--json", "detect", "--nargout", "4", "--file", script, "--line", "2", "--func", "myFunc"})
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	var got detectJSON
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if diff := cmp.Diff([]bool{false, true, true, false}, got.IsTilde); diff != "" {
		t.Errorf("IsTilde mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDetectStack(t *testing.T) {
	dir, out := setup(t)
	script := writeFile(t, dir, "script.m", "[a, ~] = myFunc()\n")
	stackFile := writeFile(t, dir, "call.yaml", fmt.Sprintf(`name: call
frames:
  - function: tilde
  - function: myFunc
  - function: script
    file: %s
    line: 1
`, script))

	code := Run([]string{"tilde", "detect", "--nargout", "2", "--stack", stackFile})
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	if !strings.Contains(out.String(), "[false true]") {
		t.Errorf("output = %q", out)
	}
}

func TestRunDetectFailureWritesDiagnostic(t *testing.T) {
	dir, out := setup(t)
	script := writeFile(t, dir, "script.m", "[a,~,c] = myFunc()\n")

	code := Run([]string{"tilde", "detect", "--nargout", "2", "--file", script, "--line", "1", "--func", "myFunc"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "count_mismatch") {
		t.Errorf("output = %q", out)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "tee"))
	if err != nil || len(entries) != 1 {
		t.Errorf("tee entries = %v, err = %v", entries, err)
	}
}

func TestRunUsageErrors(t *testing.T) {
	setup(t)
	tests := [][]string{
		{"tilde", "detect", "--file", "x.m"},
		{"tilde", "detect", "--nargout", "2"},
		{"tilde", "line", "--nargout", "2", "[a] = f()"},
		{"tilde", "scan"},
		{"tilde", "batch"},
		{"tilde", "bogus"},
		{"tilde", "detect", "--nargout", "x"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[1:], " "), func(t *testing.T) {
			if code := Run(args); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}

func TestRunLine(t *testing.T) {
	_, out := setup(t)

	code := Run([]string{"tilde", "--json", "line", "--nargout", "3", "--func", "myFunc", "[a, ~, c] = myFunc(x)"})
	if code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	var got detectJSON
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.Verdict != "ok" {
		t.Errorf("verdict = %q", got.Verdict)
	}
	if diff := cmp.Diff([]bool{false, true, false}, got.IsTilde); diff != "" {
		t.Errorf("IsTilde mismatch (-want +got):\n%s", diff)
	}
}

func TestRunBatch(t *testing.T) {
	dir, out := setup(t)
	script := writeFile(t, dir, "script.m", "[a, ~] = myFunc()\n[x, y, z] = myFunc()\n")
	stacks := filepath.Join(dir, "stacks")
	if err := os.Mkdir(stacks, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 2; i++ {
		writeFile(t, stacks, fmt.Sprintf("s%d.yaml", i), fmt.Sprintf(`frames:
  - function: tilde
  - function: myFunc
  - function: script
    file: %s
    line: %d
nargout: 2
`, script, i))
	}

	code := Run([]string{"tilde", "--json", "batch", stacks})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 (second stack mismatches)", code)
	}
	var got []detectJSON
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := []detectJSON{
		{Name: "s1", Verdict: "ok", IsTilde: []bool{false, true}},
		{Name: "s2", Verdict: "count_mismatch", IsTilde: []bool{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestRunScan(t *testing.T) {
	dir, out := setup(t)
	script := writeFile(t, dir, "script.m", "% header\n[a, ~] = myFunc()\ny = 2;\n[p, q] = other()\n")

	if code := Run([]string{"tilde", "scan", script}); code != 0 {
		t.Fatalf("exit code = %d, output:\n%s", code, out)
	}
	for _, want := range []string{"myFunc", "other", "[a, ~]", "1/2"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunStatsAfterDetect(t *testing.T) {
	_, out := setup(t)

	if code := Run([]string{"tilde", "line", "--nargout", "2", "--func", "myFunc", "[a, ~] = myFunc()"}); code != 0 {
		t.Fatalf("line exit code = %d", code)
	}
	out.Reset()

	if code := Run([]string{"tilde", "stats", "--json"}); code != 0 {
		t.Fatalf("stats exit code = %d", code)
	}
	var got struct {
		Summary struct {
			Total      int `json:"total"`
			Suppressed int `json:"suppressed"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.Summary.Total != 1 || got.Summary.Suppressed != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
}

func TestRunConfig(t *testing.T) {
	dir, out := setup(t)
	if code := Run([]string{"tilde", "config"}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), filepath.Join(dir, "tracking.db")) {
		t.Errorf("config output missing db path:\n%s", out)
	}
}

func TestRunVersion(t *testing.T) {
	_, out := setup(t)
	if code := Run([]string{"tilde", "--version"}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(out.String()) != "tilde v"+Version() {
		t.Errorf("output = %q", out)
	}
}

func TestRunStatsJSONWithoutTracking(t *testing.T) {
	dir, out := setup(t)
	cfgPath := writeFile(t, dir, "off.toml", "[tracking]\nenabled = false\n")
	t.Setenv("TILDE_CONFIG", cfgPath)

	if code := Run([]string{"tilde", "--json", "stats"}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("stats output is not JSON: %v\n%s", err, out)
	}
	if _, ok := got["summary"]; !ok {
		t.Errorf("missing summary: %s", out)
	}
}
