package keys

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/roach88/gitnostr/internal/event"
)

// Signer signs drafts on behalf of one identity.
type Signer struct {
	priv   *btcec.PrivateKey
	pubkey string
}

// Generate returns a Signer for a fresh random key.
func Generate() (*Signer, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return newSigner(priv), nil
}

// FromBytes returns a Signer for a raw 32-byte secret.
func FromBytes(secret []byte) (*Signer, error) {
	if len(secret) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(secret))
	}
	priv, _ := btcec.PrivKeyFromBytes(secret)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("secret key is zero")
	}
	return newSigner(priv), nil
}

// ParseSecret accepts a hex secret or a bech32 nsec.
func ParseSecret(s string) (*Signer, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "nsec1") {
		prefix, value, err := nip19.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("decode nsec: %w", err)
		}
		hexKey, ok := value.(string)
		if prefix != "nsec" || !ok {
			return nil, fmt.Errorf("decode nsec: unexpected prefix %q", prefix)
		}
		s = hexKey
	}
	secret, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	return FromBytes(secret)
}

func newSigner(priv *btcec.PrivateKey) *Signer {
	return &Signer{
		priv:   priv,
		pubkey: hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())),
	}
}

// PublicKey returns the x-only public key in hex.
func (s *Signer) PublicKey() string {
	return s.pubkey
}

// Sign fixes the author and timestamp of d, derives its canonical ID and
// signs that ID.
func (s *Signer) Sign(d event.Draft, createdAt int64) (event.Event, error) {
	tags := d.Tags
	if tags == nil {
		tags = [][]string{}
	}
	ev := event.Event{
		PubKey:    s.pubkey,
		CreatedAt: createdAt,
		Kind:      d.Kind,
		Tags:      tags,
		Content:   d.Content,
	}
	ev = ev.Clone()
	ev.ID = ev.CanonicalID()

	hash, err := hex.DecodeString(ev.ID)
	if err != nil {
		return event.Event{}, fmt.Errorf("sign: decode id: %w", err)
	}
	sig, err := schnorr.Sign(s.priv, hash)
	if err != nil {
		return event.Event{}, fmt.Errorf("sign: %w", err)
	}
	ev.Sig = hex.EncodeToString(sig.Serialize())
	return ev, nil
}

// NPub renders a hex public key as bech32 "npub1...".
func NPub(pubkey string) (string, error) {
	return nip19.EncodePublicKey(pubkey)
}

// ParsePublicKey accepts a hex public key or a bech32 npub and returns the
// lowercase hex form.
func ParsePublicKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "npub1") {
		prefix, value, err := nip19.Decode(s)
		if err != nil {
			return "", fmt.Errorf("decode npub: %w", err)
		}
		hexKey, ok := value.(string)
		if prefix != "npub" || !ok {
			return "", fmt.Errorf("decode npub: unexpected prefix %q", prefix)
		}
		s = hexKey
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(raw))
	}
	if _, err := schnorr.ParsePubKey(raw); err != nil {
		return "", fmt.Errorf("public key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
