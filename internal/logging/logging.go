// Package logging configures the zerolog logger shared by the client.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var defaultTimeFmt = time.RFC3339

var isTerminalFn = term.IsTerminal

// Config controls logger initialization.
type Config struct {
	Format    string    // "json", "console", or "auto"
	Level     string    // "debug", "info", "warn", "error", "disabled"
	Component string    // optional component name
	FilePath  string    // when set, logs go to this file instead of Out
	Out       io.Writer // defaults to os.Stderr
}

// Init builds the logger, installs it as the zerolog global, and returns it
// with a closer for any file it opened.
func Init(cfg Config) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = defaultTimeFmt

	var closer io.Closer = nopCloser{}
	var writer io.Writer
	if path := strings.TrimSpace(cfg.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		writer = file
		closer = file
	} else {
		out := cfg.Out
		if out == nil {
			out = os.Stderr
		}
		writer = selectWriter(cfg.Format, out)
	}

	ctx := zerolog.New(writer).Level(parseLevel(cfg.Level)).With().Timestamp()
	if component := strings.TrimSpace(cfg.Component); component != "" {
		ctx = ctx.Str("component", component)
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger, closer, nil
}

// DefaultFilePath is where the TUI writes logs, since it owns the terminal.
func DefaultFilePath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "arsenal", "arsenal-tui.log")
}

func openLogFile(path string) (*os.File, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func selectWriter(format string, out io.Writer) io.Writer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		return newConsoleWriter(out)
	case "json":
		return out
	default:
		if file, ok := out.(*os.File); ok && isTerminalFn(int(file.Fd())) {
			return newConsoleWriter(out)
		}
		return out
	}
}

func newConsoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: defaultTimeFmt,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
