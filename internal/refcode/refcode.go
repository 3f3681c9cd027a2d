// Package refcode derives short, human-friendly reference numbers from event
// IDs.
//
// The log has no central authority to hand out sequence numbers, so the
// number is computed from the ID itself: the sum of the code points of its
// text form, modulo Modulus. The mapping is one-way and collisions between
// distinct IDs are possible; a reference number is a label, never a key.
package refcode

import (
	"strconv"
	"strings"
)

// Modulus bounds every reference number to [0, Modulus).
const Modulus = 100000

// Encode returns the reference number of id. IDs are lowercase hex in
// canonical form; the caller's text is used as given.
func Encode(id string) uint32 {
	var sum uint64
	for _, r := range id {
		sum += uint64(r)
	}
	return uint32(sum % Modulus)
}

// Format renders the reference number of id as "#1234".
func Format(id string) string {
	return "#" + strconv.FormatUint(uint64(Encode(id)), 10)
}

// Canonical lowercases and trims id, so user input matches stored IDs.
func Canonical(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
