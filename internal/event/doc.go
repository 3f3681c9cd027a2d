// Package event provides the signed event type shared by every other package,
// together with its integrity checks.
//
// This package imports nothing internal. Projection, storage and transport
// packages all build on it.
//
// Key constraints:
//   - Identity is structural: the ID is sha256 over the canonical
//     [0, pubkey, created_at, kind, tags, content] encoding
//   - A signature is a BIP-340 Schnorr signature over the ID bytes
//   - Events are immutable; nothing in this package edits one in place
//   - Collections handed to projectors are sets: validated, deduplicated by ID
//     and sorted by ID, never in arrival order
package event
