package initcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edouard-claude/tilde/internal/config"
)

const exampleStack = `# Replays a script calling an inquiry function.
# Run: tilde detect --nargout 4 --stack %s
name: example
frames:
  - function: tilde
  - function: myFunc
  - function: example
    file: %s
    line: 2
nargout: 4
`

const exampleScript = `x = 1;
[mst(1), ~, ~, data] = myFunc(x);
`

// Run writes the default tilde configuration and an example stack.
func Run(args []string) error {
	force := false
	for _, arg := range args {
		switch arg {
		case "--uninstall":
			return Uninstall()
		case "--force":
			force = true
		}
	}

	cfg := config.DefaultConfig()
	cfgPath := config.Path()
	written, err := install(cfgPath, cfg, force)
	if err != nil {
		return err
	}

	fmt.Println("tilde init complete:")
	if written {
		fmt.Printf("  config: %s\n", cfgPath)
	} else {
		fmt.Printf("  config: %s (kept, use --force to overwrite)\n", cfgPath)
	}
	fmt.Printf("  example: %s\n", filepath.Join(stacksDir(cfgPath), "example.yaml"))
	fmt.Printf("  data: %s\n", filepath.Dir(cfg.Tracking.DBPath))
	return nil
}

// Uninstall removes the config file and example stack, keeping tracked data.
func Uninstall() error {
	cfgPath := config.Path()
	os.Remove(cfgPath)
	os.RemoveAll(stacksDir(cfgPath))

	fmt.Println("tilde config removed")
	return nil
}

func stacksDir(cfgPath string) string {
	return filepath.Join(filepath.Dir(cfgPath), "stacks")
}

// install writes the config unless one exists and force is unset, then
// (re)writes the example stack. Reports whether the config was written.
func install(cfgPath string, cfg *config.Config, force bool) (bool, error) {
	// 1. Data directories
	for _, dir := range []string{filepath.Dir(cfg.Tracking.DBPath), cfg.Tee.Dir, filepath.Dir(cfg.History.Path)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("create data dir: %w", err)
		}
	}

	// 2. Config file
	written, err := writeConfig(cfgPath, cfg, force)
	if err != nil {
		return false, err
	}

	// 3. Example stack and the script it points at
	dir := stacksDir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return written, fmt.Errorf("create stack dir: %w", err)
	}
	scriptPath := filepath.Join(dir, "example.m")
	if err := os.WriteFile(scriptPath, []byte(exampleScript), 0644); err != nil {
		return written, fmt.Errorf("write example script: %w", err)
	}
	stackPath := filepath.Join(dir, "example.yaml")
	content := fmt.Sprintf(exampleStack, stackPath, scriptPath)
	if err := os.WriteFile(stackPath, []byte(content), 0644); err != nil {
		return written, fmt.Errorf("write example stack: %w", err)
	}
	return written, nil
}

func writeConfig(path string, cfg *config.Config, force bool) (bool, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil && !force:
		return false, nil
	case err == nil:
		// Backup
		os.WriteFile(path+".bak", data, 0644)
	case !os.IsNotExist(err):
		return false, fmt.Errorf("read config: %w", err)
	}

	out, err := config.Encode(cfg)
	if err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
