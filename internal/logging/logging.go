// Package logging configures the process logger.
//
// Records go to a log file and to the console at the same time. The file is
// created together with its directory.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultPath is the log file used when none is configured.
const DefaultPath = "log/etl.log"

// Config selects the log destination and rendering.
type Config struct {
	// Path of the log file. Empty disables file output.
	Path string
	// Level is debug, info, warn or error.
	Level string
	// Format is text or json.
	Format string
	// Append keeps earlier runs in the log file instead of truncating it.
	Append bool
	// Console receives a copy of every record. Nil means os.Stderr.
	Console io.Writer
}

// New builds a logger from cfg. The returned closer releases the log file
// and is never nil.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	var (
		w      io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if cfg.Append {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(cfg.Path, flags, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", cfg.Path, err)
		}
		w = io.MultiWriter(f, console)
		closer = f
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(h), closer, nil
}

// Init builds a logger with New and installs it as the slog default.
func Init(cfg Config) (*slog.Logger, io.Closer, error) {
	l, c, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(l)
	return l, c, nil
}

// ErrLevel is returned for an unknown level name.
var ErrLevel = errors.New("unknown log level")

// ParseLevel converts a level name to slog.Level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w %q", ErrLevel, level)
}

// Count renders a row count with thousands separators.
func Count(key string, n int64) slog.Attr {
	return slog.String(key, humanize.Comma(n))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
