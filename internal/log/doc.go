// Package log provides slog loggers that mask secrets before they are written.
//
// The SecureHandler masks:
//   - attributes whose key names a credential (token, credential, chat_id)
//   - values shaped like a Telegram bot token, bearer token or JWT
//   - bot tokens embedded in Bot API URLs inside messages and errors
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
