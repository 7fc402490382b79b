package log

import (
	"io"
	"os"

	"github.com/paularlott/logger"
	logslog "github.com/paularlott/logger/slog"
)

var (
	defaultLogger logger.Logger
	output        io.Writer = os.Stderr
	level                   = "info"
	format                  = "console"
)

func init() {
	rebuild()
}

func rebuild() {
	defaultLogger = logslog.New(logslog.Config{
		Level:  level,
		Format: format,
		Writer: output,
	})
}

// Configure replaces the package logger. Command output goes to stdout, so
// log lines are written to stderr.
func Configure(lvl, fmt string) {
	level = lvl
	format = fmt
	rebuild()
}

// SetOutput redirects log lines, keeping level and format
func SetOutput(w io.Writer) {
	output = w
	rebuild()
}

func Info(msg string, keysAndValues ...any) {
	defaultLogger.Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	defaultLogger.Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	defaultLogger.Error(msg, keysAndValues...)
}

func Debug(msg string, keysAndValues ...any) {
	defaultLogger.Debug(msg, keysAndValues...)
}
