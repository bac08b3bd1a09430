// Package badge implements the set_text operation and its companions.
//
// A Service owns one Validator and one Dispatcher bound to a single device
// sink. Every entry point follows the same path:
//
//	raw request -> Validator -> Command -> Dispatcher -> sink -> acknowledgement
//
// Validation failures return a *display.ValidationError and never reach the
// sink. Runtime failures return a *dispatch.Error. On success the caller
// gets a short human-readable acknowledgement string.
//
// The Validator's limits come from the sink (for example the badge's
// 255-character buffer and Latin-1 fonts) and may be tightened by
// Options.MaxTextLength.
//
// Beyond SetText the Service offers SetMessages, which fills up to eight
// badge slots in one payload, and PlaySaved, which replays messages from
// the saved-message library. ListDevices gathers displays from the
// configuration, the network and local serial ports.
package badge
