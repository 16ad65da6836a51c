package cli

import (
	"io"
	"log/slog"

	"github.com/sqlforge/sqlforge/internal/cli/config"
)

// newLogger builds the CLI logger. Progress reporting goes through the
// renderer; the logger carries diagnostics, so it stays at warn level unless
// verbose is set.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.Quiet {
		return slog.New(slog.DiscardHandler)
	}
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
