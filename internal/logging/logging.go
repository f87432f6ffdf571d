// Package logging configures logrus for the daemon: progress lines go to
// stdout, failures to stderr, or everything to a rotating log file.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mahyarmirrashed/webpd/internal/config"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// Setup configures logger from cfg. Console output is split between stdout
// and stderr; with cfg.LogFile set, all lines go to that file. The returned
// closer releases the log file and is a no-op for console output.
func Setup(logger *log.Logger, cfg *config.Config) io.Closer {
	if cfg.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
			MaxAge:     maxLogAgeDays,
		}
		SetupWithWriters(logger, cfg, file, file)
		return file
	}

	SetupWithWriters(logger, cfg, os.Stdout, os.Stderr)
	return io.NopCloser(nil)
}

// SetupWithWriters configures logger to write info and debug lines to out
// and warnings and errors to errOut.
func SetupWithWriters(logger *log.Logger, cfg *config.Config, out, errOut io.Writer) {
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger.SetLevel(ParseLevel(cfg.LogLevel))
	logger.SetOutput(io.Discard)
	logger.ReplaceHooks(make(log.LevelHooks))

	logger.AddHook(&writer.Hook{
		Writer:    errOut,
		LogLevels: []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel},
	})
	logger.AddHook(&writer.Hook{
		Writer:    out,
		LogLevels: []log.Level{log.InfoLevel, log.DebugLevel, log.TraceLevel},
	})
}

// ParseLevel converts a config log level to a logrus level.
// Unknown values fall back to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
