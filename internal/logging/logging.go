// Package logging builds the zap logger used by the CLI.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps a -v count to a zap level: warn by default, info at -v,
// debug at -vv and above.
func Level(verbose int) zapcore.Level {
	switch {
	case verbose >= 2:
		return zapcore.DebugLevel
	case verbose == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// New returns a console logger writing to w at the level for verbose.
func New(verbose int, w io.Writer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	enc.NameKey = "logger"
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(Level(verbose)),
	)
	return zap.New(core).Named("tilde")
}
