package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON structured logger writing to stdout. Services and
// handlers receive it by injection; nothing logs through a global.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
