// Package log builds the slog loggers used by onionmonitor.
//
// Every logger returned here wraps its handler in a SecureHandler, which
// masks attribute values that look like credentials before they reach the
// output, such as API tokens found in project metadata or the contents of an
// onion service's hs_ed25519_secret_key.
//
// Onion addresses are public and are never masked.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
