// Package permission provides the typed capability set and the closed role
// set used by accessgate authorization checks.
//
// Capabilities are fixed bit positions inside a [Set] bitmask. The set of
// capabilities is closed at compile time: unknown capability names fail at
// the [FromNames] boundary instead of silently passing string membership
// checks at request time.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import accessgate, jwt, or session.
package permission
