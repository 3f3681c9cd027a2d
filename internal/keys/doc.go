// Package keys holds secp256k1 identities and signs event drafts.
//
// Secret keys are accepted as 64-char hex or bech32 "nsec1..." strings.
// Public keys are x-only, hex encoded, as they appear in an event's pubkey
// field.
package keys
