// Package logging provides structured logging for ledbadge.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used throughout the CLI, the sinks and the server.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (frame hex dumps, WebSocket payloads)
//   - Info: Normal operations (dispatches, connections, HTTP requests)
//   - Warn: Non-fatal issues (rejected requests, dropped connections)
//   - Error: Failed dispatches, startup failures
//
// Logging is silent unless a level is given, either explicitly or through
// LEDBADGE_LOG_LEVEL. CLI output is therefore never mixed with log lines
// unless the user asks for them.
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Info("Device opened",
//	    zap.String("device", "/dev/ttyUSB0"),
//	    zap.Int("baud", 115200),
//	)
//
// # Specialized Logging
//
//	logging.LogValidation("set_text", err)
//	logging.LogDispatch(cmd.String(), ack.Device, latency, err)
//	logging.LogRawBytes("serial TX", frame)
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogHTTPRequest(remoteAddr, "POST", "/api/set_text", 200, latency)
//
// # Log Files
//
// When Options.File (or LEDBADGE_LOG_FILE) is set, logs go to that file
// instead of stdout and are rotated by lumberjack:
//
//	logging.InitializeWithOptions(logging.Options{
//	    Level: "info",
//	    File:  "/var/log/ledbadge/server.log",
//	})
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and
// SetLogger are meant to be called once at startup.
package logging
