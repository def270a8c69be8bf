package stack

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseStack parses YAML bytes into a Stack.
func ParseStack(data []byte) (*Stack, error) {
	var s Stack
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse stack: %w", err)
	}
	if err := ValidateStack(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidateStack checks frame fields and counters.
func ValidateStack(s *Stack) error {
	for i, f := range s.Frames {
		if f.Function == "" {
			return fmt.Errorf("validate stack %q: frames[%d] missing 'function'", s.Name, i)
		}
		if f.Line < 0 {
			return fmt.Errorf("validate stack %q: frames[%d] negative 'line'", s.Name, i)
		}
	}
	if s.Executing < 0 {
		return fmt.Errorf("validate stack %q: negative 'executing'", s.Name)
	}
	if s.Nargout != nil && *s.Nargout < 0 {
		return fmt.Errorf("validate stack %q: negative 'nargout'", s.Name)
	}
	return nil
}
