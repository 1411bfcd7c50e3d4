package main

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/lmittmann/tint"

	"github.com/augustoroman/frontdoor"
)

func newLogger(w io.Writer, color bool, level slog.Level) *slog.Logger {
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		NoColor:    !color,
		TimeFormat: "2006-01-02 15:04:05.000",
	}))
	slog.SetDefault(logger)
	return logger
}

// requestLogger writes the frontdoor request log through logger. Client
// errors are logged as warnings, failures as errors.
func requestLogger(logger *slog.Logger) func(frontdoor.LogEntry) {
	return func(e frontdoor.LogEntry) {
		if e.Quiet {
			return
		}
		level := slog.LevelInfo
		switch {
		case e.Error != nil || e.StatusCode >= 500:
			level = slog.LevelError
		case e.StatusCode >= 400:
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("remote", e.RemoteIp),
			slog.String("method", e.Request.Method),
			slog.String("uri", e.Request.RequestURI),
			slog.Int("status", e.StatusCode),
			slog.Int("size", e.ResponseSize),
			slog.Duration("elapsed", e.Elapsed),
			slog.String("step", e.Handler()),
		}
		if len(e.Note) > 0 {
			keys := make([]string, 0, len(e.Note))
			for k := range e.Note {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			notes := make([]any, 0, len(keys))
			for _, k := range keys {
				notes = append(notes, slog.String(k, e.Note[k]))
			}
			attrs = append(attrs, slog.Group("note", notes...))
		}
		if e.Error != nil {
			attrs = append(attrs, tint.Err(e.Error))
		}
		logger.LogAttrs(context.Background(), level, "request", attrs...)
	}
}
