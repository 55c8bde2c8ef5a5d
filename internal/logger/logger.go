package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type implLogger struct {
	logger *slog.Logger
	level  string
}

// New creates a Logger writing human-readable text to stderr.
func New(level string) Logger {
	lvl := parseLevel(level)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return &implLogger{
		logger: slog.New(h),
		level:  strings.ToLower(level),
	}
}

// NewWithFile creates a Logger that writes text to stderr and JSON to logFile.
// If the file cannot be opened the logger falls back to stderr only.
// The returned cleanup closes the file.
func NewWithFile(level, logFile string) (Logger, func() error) {
	if logFile == "" {
		return New(level), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l := New(level)
		l.Warn(context.Background(), "Failed to open log file %s, using stderr only: %v", logFile, err)
		return l, func() error { return nil }
	}

	return NewWithWriters(level, os.Stderr, file), file.Close
}

// NewWithWriters fans out to a text writer and a JSON writer.
func NewWithWriters(level string, text, json io.Writer) Logger {
	lvl := parseLevel(level)
	textHandler := slog.NewTextHandler(text, &slog.HandlerOptions{Level: lvl})
	jsonHandler := slog.NewJSONHandler(json, &slog.HandlerOptions{Level: lvl})

	return &implLogger{
		logger: slog.New(slogmulti.Fanout(textHandler, jsonHandler)),
		level:  strings.ToLower(level),
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) log(ctx context.Context, level slog.Level, msg string, args []interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(ctx, level, msg)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.log(ctx, slog.LevelDebug, msg, args)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.log(ctx, slog.LevelInfo, msg, args)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.log(ctx, slog.LevelWarn, msg, args)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.log(ctx, slog.LevelError, msg, args)
	}
}

func (l *implLogger) With(attrs ...any) Logger {
	return &implLogger{
		logger: l.logger.With(attrs...),
		level:  l.level,
	}
}

// Nop returns a Logger that discards everything. Handy in tests.
func Nop() Logger {
	return &implLogger{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		level:  "error",
	}
}
