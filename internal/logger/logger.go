package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

var defaultLogger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})

func defaultOutput() io.Writer { return os.Stderr }

type Config struct {
	Level      string
	JSON       bool
	Output     io.Writer
	TimeFormat string
}

func parseLevel(level string) charmlog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Init replaces the package logger. Call it once from main.
// Output defaults to stderr, the stream used before Init.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = defaultOutput()
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "2006/01/02 15:04:05"
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           parseLevel(cfg.Level),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	defaultLogger = l
}

func Debug(msg string, keyvals ...any) { defaultLogger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { defaultLogger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { defaultLogger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { defaultLogger.Error(msg, keyvals...) }

// Fatal logs and exits the process.
func Fatal(msg string, keyvals ...any) { defaultLogger.Fatal(msg, keyvals...) }

func With(keyvals ...any) *charmlog.Logger {
	return defaultLogger.With(keyvals...)
}
