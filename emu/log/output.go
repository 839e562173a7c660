// Package log provides per-module structured logging on top of logrus.
//
// Debug output is opt-in per module (see EnableDebugModules), warnings and
// errors are always emitted.
package log

import (
	"io"
	"os"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

var std = newLogger(os.Stderr)

var disabled bool

func newLogger(w io.Writer) *logrus.Logger {
	return &logrus.Logger{
		Out:       w,
		Formatter: &logrus.TextFormatter{FullTimestamp: true},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.DebugLevel,
	}
}

// SetOutput sets the destination of all log modules. Colors are only used
// when logging to the standard error.
func SetOutput(w io.Writer) {
	std.Out = w
	std.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: w != os.Stderr,
	}
}

// SetLevel sets the minimum level of logged entries, for all modules.
func SetLevel(lvl Level) {
	std.Level = lvl
}

// Disable turns off logging entirely. Mostly useful in tests.
func Disable() {
	disabled = true
}
