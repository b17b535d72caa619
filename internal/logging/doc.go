// Package logging provides structured logging for sheetview.
//
// Logs are JSON lines written through log/slog to {state_dir}/debug.log.
// The terminal is owned by the TUI while it runs, so the logger never
// writes to stdout or stderr.
//
// # Creating a Logger
//
//	logger, err := logging.NewLogger(stateDir, logging.Options{
//	    Level:    cfg.Logging.Level,
//	    Rotation: logging.RotationConfig{MaxSizeMB: 5, MaxBackups: 2},
//	})
//	if err != nil {
//	    logger = logging.NopLogger()
//	}
//	defer logger.Close()
//
// # Child Loggers
//
// Child loggers carry persistent attributes and share the parent's file:
//
//	gridLog := logger.WithComponent("grid")
//	gridLog.Info("extent grown", "rows", 34, "cols", 12)
//
//	docLog := logger.WithComponent("sample").WithDocument("data/sample.s2v")
//	docLog.Debug("marker write failed", "error", err)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"extent grown","component":"grid","rows":34,"cols":12}
//
// # Rotation
//
// RotatingWriter renames debug.log to debug.log.1 once it passes
// MaxSizeMB, shifting older backups up to MaxBackups. It writes through an
// afero.Fs so tests can use an in-memory filesystem.
//
// # Levels
//
// DEBUG, INFO, WARN and ERROR. Unknown level strings fall back to INFO.
package logging
