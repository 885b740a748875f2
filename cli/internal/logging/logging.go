package logging

import (
	"io"
	"log/slog"
	"os"
)

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values fall back
// to error, the production default.
func ParseLevel(l string) slog.Level {
	switch l {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Init installs the default logger. The terminal belongs to the game view,
// so logs go to DICEROOM_LOG_FILE when set and are discarded otherwise.
// The returned function closes the log file.
func Init() func() {
	level := slog.LevelError // default: production only shows errors
	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = ParseLevel(l)
	}

	var (
		w       io.Writer = io.Discard
		cleanup           = func() {}
	)
	if path := os.Getenv("DICEROOM_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			w = f
			cleanup = func() { f.Close() }
		}
	}

	logger := slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	)
	slog.SetDefault(logger)
	return cleanup
}
