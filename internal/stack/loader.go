package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// LoadFile reads one stack file. A missing name defaults to the file name.
func LoadFile(path string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stack: %w", err)
	}
	s, err := ParseStack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// LoadDir loads every .yaml or .yml stack in dir, sorted by file name.
// Invalid files are skipped with a warning.
func LoadDir(dir string, log *zap.Logger) ([]*Stack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read stack dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	var names []string
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var stacks []*Stack
	for _, name := range names {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("skipping invalid stack", zap.String("file", name), zap.Error(err))
			continue
		}
		stacks = append(stacks, s)
	}
	return stacks, nil
}
