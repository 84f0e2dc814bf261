// Package log provides xstream's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Records flow through log/slog via a
// bridge handler that hands them to a Formatter and one or more Outputs, so
// the slog ecosystem stays available while output stays consistent.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("store"), log.Str("stream", "orders"))
//	l.Info("stream created", log.Int("entries", 0))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or json
// format, console or null output, redacted keys).
//
// # Interop
//
// Libraries expecting *log.Logger can use ToStdLogger, and RedirectStdLog
// routes the standard library's default logger through a Logger.
package log
