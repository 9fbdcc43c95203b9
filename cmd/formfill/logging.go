package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/sagarc03/formfill/config"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// logOutput returns where logs go for cmd. Commands that write their result
// to stdout log to stderr.
func logOutput(cmd *cobra.Command) io.Writer {
	if cmd.Annotations["stdout"] == "result" {
		return os.Stderr
	}
	return os.Stdout
}

// setupLogging installs the default logger for cfg and sends the standard
// log package through the same handler.
func setupLogging(cfg *config.Config, out io.Writer) {
	h := newHandler(out, cfg.IsProduction(), parseLevel(cfg.Log.Level))
	slog.SetDefault(slog.New(h))

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(h, slog.LevelInfo).Writer())
}

// newHandler returns a JSON handler with UTC "ts" timestamps in production
// and a colored console handler otherwise.
func newHandler(out io.Writer, production bool, level slog.Leveler) slog.Handler {
	if !production {
		return tint.NewHandler(out, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: utcTimestamp,
	})
}

func utcTimestamp(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.TimeKey {
		return a
	}
	return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
}

// parseLevel maps a config level name to a slog level. Unknown names log at
// info.
func parseLevel(s string) slog.Level {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level
	}
	return slog.LevelInfo
}
