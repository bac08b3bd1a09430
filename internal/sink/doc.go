// Package sink defines the Device Sink: the collaborator that actually
// delivers a validated display command to an LED badge or character display.
//
// # Contract
//
// A Sink receives only commands that have already passed validation. It
// performs exactly one delivery per Write call and reports the outcome as an
// Ack or an error. Sinks never re-validate and never retry; retrying is a
// caller decision.
//
// Every Sink is a shared resource. Concrete sinks in this package hold a
// mutex around the whole wire exchange so concurrent writers never
// interleave their bytes. Sinks from elsewhere can be made safe with
// Serialize, which also honours context cancellation while waiting for the
// device.
//
// # Optional capabilities
//
// A sink may also implement:
//
//   - Limiter: declares the device's text limits (maximum characters and
//     charset) so callers can build a matching Validator.
//   - ProgramSink: accepts a Program of up to eight messages in one write,
//     which is how the badge's message slots are filled.
//
// # Implementations
//
//   - Serial: binary frames over a USB serial port (pkg/term)
//   - WebSocket: JSON requests to a network display bridge (gorilla/websocket)
//   - Console: renders a preview to a terminal (lipgloss)
//   - Memory: records writes for tests and dry runs
//
// Use Open to build a sink from a Target, typically taken from a device
// profile in the configuration registry.
//
// # Errors
//
// Failures are reported as *Error values carrying an ErrorType, the device
// name and a Retryable hint. ClassifyNetworkError turns raw network errors
// into typed ones, and TroubleshootingHint/ShortMessage turn them into
// user-facing text.
package sink
