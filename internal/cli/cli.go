package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/edouard-claude/tilde/internal/config"
	"github.com/edouard-claude/tilde/internal/display"
	"github.com/edouard-claude/tilde/internal/engine"
	"github.com/edouard-claude/tilde/internal/initcmd"
	"github.com/edouard-claude/tilde/internal/logging"
	"github.com/edouard-claude/tilde/internal/source"
	"github.com/edouard-claude/tilde/internal/stack"
	"github.com/edouard-claude/tilde/internal/tee"
	"github.com/edouard-claude/tilde/internal/tracking"
)

const version = "0.1.0"

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// errUsage marks a command line that could not be understood.
var errUsage = errors.New("usage")

// Run is the main entry point. Returns exit code.
func Run(args []string) int {
	if len(args) < 2 {
		printUsage()
		return 0
	}

	flags, remaining := ParseFlags(args[1:])

	if flags.Version {
		fmt.Fprintf(stdout, "tilde v%s\n", Version())
		return 0
	}
	if flags.Help || len(remaining) == 0 {
		printUsage()
		return 0
	}

	command := remaining[0]
	cmdArgs := remaining[1:]

	// Built-in commands
	switch command {
	case "init":
		if err := initcmd.Run(cmdArgs); err != nil {
			display.PrintError(err.Error())
			return 1
		}
		return 0

	case "config":
		cfg := loadConfig(flags, zap.NewNop())
		data, err := config.Encode(cfg)
		if err != nil {
			display.PrintError(err.Error())
			return 1
		}
		fmt.Fprintf(stdout, "# %s\n%s", config.Path(), data)
		return 0

	case "version":
		fmt.Fprintf(stdout, "tilde v%s\n", Version())
		return 0

	case "help":
		printUsage()
		return 0
	}

	log := logging.New(flags.Verbose, stderr)
	defer log.Sync()

	cfg := loadConfig(flags, log)

	var err error
	switch command {
	case "detect":
		err = withPipeline(cfg, log, func(p *engine.Pipeline) error { return runDetect(p, cmdArgs, flags) })
	case "line":
		err = withPipeline(cfg, log, func(p *engine.Pipeline) error { return runLine(p, cmdArgs, flags) })
	case "batch":
		err = withPipeline(cfg, log, func(p *engine.Pipeline) error { return runBatch(p, cmdArgs, flags, log) })
	case "scan":
		err = runScan(cfg, cmdArgs, flags)
	case "stats":
		err = runStats(cfg, cmdArgs, flags, log)
	default:
		display.PrintError(fmt.Sprintf("unknown command %q (see tilde --help)", command))
		return 1
	}
	return exitCode(err)
}

// errFailed is returned once failures have already been rendered.
var errFailed = errors.New("detection failed")

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		display.PrintError(err.Error())
		return 1
	}
}

func loadConfig(flags Flags, log *zap.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Warn("config error, using defaults", zap.Error(err))
		cfg = config.DefaultConfig()
	}
	if flags.NoColor || !cfg.Display.Color {
		display.SetColor("never")
	}
	return cfg
}

// withPipeline builds the detection pipeline from cfg and hands it to fn.
// The tracker is opened lazily and closed when fn returns.
func withPipeline(cfg *config.Config, log *zap.Logger, fn func(*engine.Pipeline) error) error {
	var tracker *tracking.Tracker
	if cfg.Tracking.Enabled {
		t, err := tracking.NewTracker(tracking.DBPath(cfg.Tracking.DBPath))
		if err != nil {
			log.Info("tracking disabled", zap.Error(err))
		} else {
			tracker = t
			defer tracker.Close()
		}
	}

	p := &engine.Pipeline{
		Options:   cfg.DetectOptions(),
		Lines:     source.FileLineReader{},
		Tracker:   tracker,
		TeeConfig: teeConfig(cfg),
		Logger:    log,
	}
	if cfg.History.Path != "" {
		p.History = source.HistoryFile{Path: cfg.History.Path}
	}
	return fn(p)
}

func teeConfig(cfg *config.Config) tee.Config {
	teeCfg := tee.DefaultConfig()
	teeCfg.Enabled = cfg.Tee.Enabled
	teeCfg.Mode = cfg.Tee.Mode
	teeCfg.MaxFiles = cfg.Tee.MaxFiles
	if cfg.Tee.Dir != "" {
		teeCfg.Dir = cfg.Tee.Dir
	}
	return teeCfg
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runDetect(p *engine.Pipeline, args []string, flags Flags) error {
	fs := newFlagSet("detect")
	nargout := fs.Int("nargout", 0, "number of outputs the inquiry function declares")
	stackPath := fs.String("stack", "", "stack file to replay")
	file := fs.String("file", "", "caller source file")
	line := fs.Int("line", 0, "caller line number")
	fn := fs.String("func", "", "inquiry function name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: detect: %v", errUsage, err)
	}
	if !fs.Changed("nargout") {
		return fmt.Errorf("%w: detect requires --nargout", errUsage)
	}

	var s *stack.Stack
	switch {
	case *stackPath != "":
		loaded, err := stack.LoadFile(*stackPath)
		if err != nil {
			return err
		}
		s = loaded
	case *file != "" && *fn != "":
		s = stack.Synthetic(*file, *line, *fn)
	default:
		return fmt.Errorf("%w: detect requires --stack FILE or --file F --line L --func NAME", errUsage)
	}

	return report([]engine.Outcome{p.Detect(s, *nargout)}, flags)
}

func runLine(p *engine.Pipeline, args []string, flags Flags) error {
	fs := newFlagSet("line")
	nargout := fs.Int("nargout", 0, "number of outputs the inquiry function declares")
	fn := fs.String("func", "", "inquiry function name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: line: %v", errUsage, err)
	}
	if !fs.Changed("nargout") || *fn == "" || fs.NArg() == 0 {
		return fmt.Errorf("%w: line requires --nargout N --func NAME 'TEXT'", errUsage)
	}

	text := strings.Join(fs.Args(), " ")
	return report([]engine.Outcome{p.CheckLine(text, *fn, *nargout)}, flags)
}

func runBatch(p *engine.Pipeline, args []string, flags Flags, log *zap.Logger) error {
	fs := newFlagSet("batch")
	nargout := fs.Int("nargout", -1, "outputs for stacks that record none")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: batch: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: batch requires a stack directory", errUsage)
	}

	stacks, err := stack.LoadDir(fs.Arg(0), log)
	if err != nil {
		return err
	}
	if len(stacks) == 0 {
		return fmt.Errorf("no stack files in %s", fs.Arg(0))
	}
	return report(p.Batch(stacks, *nargout), flags)
}

func runScan(cfg *config.Config, args []string, flags Flags) error {
	fs := newFlagSet("scan")
	fn := fs.String("func", "", "only report calls to this function")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: scan: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: scan requires a source file", errUsage)
	}

	path := fs.Arg(0)
	hits, err := engine.Scan(path, *fn, cfg.DetectOptions().Extract)
	if err != nil {
		return err
	}
	if err := display.RenderHits(stdout, path, hits, flags.JSON); err != nil {
		return err
	}
	for _, h := range hits {
		if h.Err != nil {
			return errFailed
		}
	}
	return nil
}

func runStats(cfg *config.Config, args []string, flags Flags, log *zap.Logger) error {
	if flags.JSON {
		args = append(args, "--json")
	}
	if !cfg.Tracking.Enabled {
		return display.RunStats(stdout, nil, args)
	}
	tracker, err := tracking.NewTracker(tracking.DBPath(cfg.Tracking.DBPath))
	if err != nil {
		log.Info("tracking unavailable", zap.Error(err))
		return display.RunStats(stdout, nil, args)
	}
	defer tracker.Close()

	return display.RunStats(stdout, tracker, args)
}

// report renders outcomes and turns any failure into errFailed.
func report(outcomes []engine.Outcome, flags Flags) error {
	if err := display.RenderOutcomes(stdout, outcomes, flags.JSON); err != nil {
		return err
	}
	for _, out := range outcomes {
		if !out.OK() {
			return errFailed
		}
	}
	return nil
}

func printUsage() {
	usage := `tilde v%s - output suppression detector

Usage: tilde [flags] <command> [args...]

Commands:
  detect       Detect suppressed outputs at a recorded call site
  line         Detect suppressed outputs on a literal caller line
  scan         List every bracketed output binding in a source file
  batch        Run detect over every stack file in a directory
  stats        Show the detection history report
  config       Show current configuration
  init         Write the default configuration

Flags:
  -v, -vv      Verbose output (stackable)
  --json       JSON output
  --no-color   Disable styled output
  --version    Show version
  --help       Show this help

Examples:
  tilde detect --nargout 4 --stack call.yaml
  tilde detect --nargout 2 --file script.m --line 12 --func myFunc
  tilde line --nargout 3 --func myFunc '[a, ~, c] = myFunc(x)'
  tilde scan script.m --func myFunc
  tilde batch stacks/ --nargout 2
  tilde stats --recent 20
`
	fmt.Fprintf(stdout, usage, Version())
}

// Version returns the current version string.
func Version() string {
	return version
}
