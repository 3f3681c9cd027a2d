// Package names resolves author keys to display names.
//
// Names are advisory. They come from self-asserted profile events, live in a
// cache that may be stale, empty or unreachable, and are never consulted by
// the projectors. Every failure degrades to Fallback, a deterministic
// truncation of the author's npub.
package names
