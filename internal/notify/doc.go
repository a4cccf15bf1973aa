// Package notify delivers the end-of-run summary message.
//
// TelegramNotifier posts Markdown text to the Telegram Bot API. When no
// destination or credential is configured it is disabled and Send is a
// no-op. Deliver runs a Send in the background and returns a Task whose
// outcome can be awaited for logging and tests.
package notify
