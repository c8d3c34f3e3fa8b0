// Package log builds the slog loggers used by wisdl.
//
// Every logger returned by this package wraps its handler in a SecureHandler,
// which masks portal passwords and HTTP Basic credentials before a record is
// written. Even at the debug level a password never reaches the output.
//
// # Levels
//
// The verbosity count from the command line selects the level:
//
//	0   warnings and errors
//	1   info (-v): studies, courses and completed downloads
//	2+  debug (-vv): every fetched page and skipped task
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbosity)
//	slog.SetDefault(logger)
package log
