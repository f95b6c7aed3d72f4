// Package logger provides structured logging for the pin downloader.
//
// It wraps zerolog behind a small Logger interface with a global instance,
// coloured console output on stderr, optional JSON output and an optional
// log file. Tests use NewTestLogger to capture messages or NewNopLogger to
// discard them.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("url", pageURL).Debug("Fetching pin page")
package logger
