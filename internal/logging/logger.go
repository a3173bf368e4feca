package logging

import (
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	Level string
	// File is a rotated JSON log. Empty disables file logging.
	File string
	// Console receives human-readable text logs. Nil disables console logging.
	Console io.Writer
}

// Setup builds the process logger. The returned closer flushes and closes the
// log file, if any.
func Setup(params SetupParams) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: GetLevel(params.Level)}

	var handlers []slog.Handler
	if params.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(params.Console, opts))
	}

	var closer io.Closer = nopCloser{}
	if params.File != "" {
		file := params.File
		if !strings.HasSuffix(file, ".log") {
			file += ".log"
		}
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(lj, opts))
		closer = lj
	}

	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler), closer
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer
}

func GetLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
