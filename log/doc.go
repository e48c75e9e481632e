// Package log provides the structured logger used by tmplc.
//
// It is a thin layer over [log/slog] adding a Trace level below Debug,
// configurable time layouts, and a "pretty" mode that colors keys and values
// with lipgloss when writing to a terminal.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template compiled", slog.Int("segments", 3))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// # Zero Value
//
// The zero [Logger] discards everything. Library code (the lang package)
// accepts a Logger through an option and logs unconditionally; callers that
// never configure one pay only for the Enabled check.
//
// # Default Logger
//
// Package-level functions ([Info], [DebugContext], ...) write through a
// process-wide default logger that [Config] reconfigures in place.
package log
