// Package server exposes the set_text operation over HTTP and WebSocket.
//
// The server is one concrete caller of badge.Service. It adds no display
// semantics of its own: every request is decoded, handed to the service and
// its result mapped onto a response.
//
// # Routes
//
//	GET  /healthz           liveness check, never authenticated
//	GET  /api/modes         accepted modes, effects and the active limits
//	POST /api/set_text      {"text": "...", "speed": 4, "mode": "left", "effects": ["border"]}
//	POST /api/set_messages  {"messages": [ ...up to 8 set_text bodies... ]}
//	GET  /bridge            WebSocket speaking the JSON bridge protocol
//
// Replies share one envelope:
//
//	{"result": "ok", "message": "Displayed \"HELLO\" (left, speed 4) on desk", "correlationId": "..."}
//	{"result": "error", "code": "SpeedOutOfRange", "message": "...", "correlationId": "..."}
//
// # Status Codes
//
//   - 400: malformed JSON or a validation error (code is the validation kind)
//   - 401: missing or invalid bearer token
//   - 501: the display cannot take several messages at once
//   - 502: the display reported a failure
//   - 504: the display did not acknowledge in time
//
// # Bridge Protocol
//
// The /bridge endpoint lets a WebSocket sink on another machine drive the
// display attached to this one. Each text frame holds a protocol.BridgeRequest
// and is answered by exactly one protocol.BridgeAck with the same id. A
// failed request produces a negative ack and leaves the connection open.
// The server pings idle connections so dead peers are noticed.
//
// # Authentication
//
// When Config.AuthSecret is set every route except /healthz requires an
// HS256 JWT in an "Authorization: Bearer" header. IssueToken mints one.
//
// # Discovery
//
// With Config.Advertise the server registers itself as "_ledbadge._tcp"
// over mDNS. Its TXT records carry the bridge path, text limit, charset and
// whether a token is needed, so discovery.Device can build a sink target.
//
// # Graceful Shutdown
//
// Start handles SIGINT and SIGTERM:
//  1. Withdraw the mDNS advertisement
//  2. Stop accepting new connections and drain HTTP requests
//  3. Close open bridge connections
//  4. Wait for handlers to return
package server
