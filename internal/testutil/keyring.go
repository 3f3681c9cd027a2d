package testutil

import (
	"bytes"
	"testing"

	"github.com/roach88/gitnostr/internal/event"
	"github.com/roach88/gitnostr/internal/keys"
)

// Signer returns a deterministic identity derived from seed: the secret key
// is 32 repetitions of the seed byte. seed must be non-zero.
func Signer(t testing.TB, seed byte) *keys.Signer {
	t.Helper()
	s, err := keys.FromBytes(bytes.Repeat([]byte{seed}, 32))
	if err != nil {
		t.Fatalf("keys.FromBytes(seed=%d) failed: %v", seed, err)
	}
	return s
}

// Sign signs d as s at createdAt, failing the test on error.
func Sign(t testing.TB, s *keys.Signer, d event.Draft, createdAt int64) event.Event {
	t.Helper()
	ev, err := s.Sign(d, createdAt)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	return ev
}

// Tamper returns a copy of ev whose content no longer matches its ID.
func Tamper(ev event.Event) event.Event {
	c := ev.Clone()
	c.Content += " (edited)"
	return c
}

// Forge returns a copy of ev with a recomputed ID but the original
// signature, as an attacker without the author's key would produce.
func Forge(ev event.Event, content string) event.Event {
	c := ev.Clone()
	c.Content = content
	c.ID = c.CanonicalID()
	return c
}
