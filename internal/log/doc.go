// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (API keys, cookies, tokens)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Session identifiers and authentication tokens
//
// A scan logs a lot of context around authenticated browser sessions and
// remote detection calls. Even in verbose mode, sensitive values are
// masked so a shared debug log cannot leak the detection API key or the
// login session of the product under scan.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("detection request sent",
//	    "api_key", "sk-abc123",  // Will be sanitized to "***REDACTED***"
//	    "endpoint", "https://detect.example.com/v1/batch",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
