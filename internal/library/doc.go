// Package library stores named display messages in a local SQLite database
// so they can be replayed later with `ledbadge library play`.
//
// Every message is validated before it is saved, so anything read back
// from the library is known to have been a valid request when stored.
// Playback still re-validates against the target display, because a
// message saved for one display may not fit another.
//
// The database file defaults to library.db next to the configuration
// file. Schema changes ship as embedded, numbered migrations applied on
// Open.
package library
