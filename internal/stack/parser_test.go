package stack

import (
	"testing"
)

func TestParseStackValid(t *testing.T) {
	yaml := `
name: "script-call"
frames:
  - function: tilde
  - function: myFunc
    file: /src/myFunc.m
    line: 3
  - function: script
    file: /src/script.m
    line: 12
executing: 12
nargout: 2
`
	s, err := ParseStack([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "script-call" {
		t.Errorf("name = %q", s.Name)
	}
	if len(s.Frames) != 3 {
		t.Fatalf("frames = %d", len(s.Frames))
	}
	if s.Frames[2].File != "/src/script.m" || s.Frames[2].Line != 12 {
		t.Errorf("caller frame = %+v", s.Frames[2])
	}
	if s.Executing != 12 {
		t.Errorf("executing = %d", s.Executing)
	}
	if s.Nargout == nil || *s.Nargout != 2 {
		t.Errorf("nargout = %v", s.Nargout)
	}
}

func TestParseStackInteractive(t *testing.T) {
	yaml := `
frames:
  - function: tilde
  - function: myFunc
history: "[a, ~] = myFunc(1)"
`
	s, err := ParseStack([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.HistoryReader().LastEntry()
	if err != nil || got != "[a, ~] = myFunc(1)" {
		t.Errorf("history = %q, %v", got, err)
	}
}

func TestParseStackInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing function", "frames:\n  - file: a.m\n    line: 1\n"},
		{"negative line", "frames:\n  - function: f\n    line: -1\n"},
		{"negative executing", "executing: -3\n"},
		{"negative nargout", "nargout: -1\n"},
		{"invalid yaml", "}{invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseStack([]byte(tt.yaml)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestResolverCopiesFrames(t *testing.T) {
	s := Synthetic("/src/run.m", 4, "myFunc")
	frames, err := s.Resolver().Frames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frames[2].Line = 99
	if s.Frames[2].Line != 4 {
		t.Error("resolver shares storage with the stack")
	}
}

func TestResolverFreshSliceEachCall(t *testing.T) {
	s := Synthetic("/src/run.m", 4, "myFunc")
	r := s.Resolver()
	first, _ := r.Frames()
	first[2].Line = 99
	s.Frames[2].Line = 7

	second, err := r.Frames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second[2].Line != 4 {
		t.Errorf("second call line = %d, want 4", second[2].Line)
	}
}

func TestSynthetic(t *testing.T) {
	s := Synthetic("/src/run.m", 4, "myFunc")
	if len(s.Frames) != 3 {
		t.Fatalf("frames = %d", len(s.Frames))
	}
	if s.Frames[1].Function != "myFunc" {
		t.Errorf("inquiry = %q", s.Frames[1].Function)
	}
	if s.Frames[2].Function != "run" || s.Frames[2].Line != 4 {
		t.Errorf("caller = %+v", s.Frames[2])
	}
	if !s.Guard().Safe(s.Frames[2], s.Frames) {
		t.Error("guard without executing line should be safe")
	}
}
