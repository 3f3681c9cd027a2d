package event

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// Verifier checks a signature over an event ID. Implementations must be
// safe for concurrent use.
type Verifier interface {
	Verify(id, pubkey, sig string) error
}

// SchnorrVerifier verifies BIP-340 signatures over secp256k1 x-only keys.
type SchnorrVerifier struct{}

var errSignatureMismatch = errors.New("schnorr verification failed")

// Verify implements Verifier.
func (SchnorrVerifier) Verify(id, pubkey, sig string) error {
	hash, err := hex.DecodeString(id)
	if err != nil || len(hash) != 32 {
		return fmt.Errorf("id is not a 32-byte hex digest")
	}
	keyBytes, err := hex.DecodeString(pubkey)
	if err != nil {
		return fmt.Errorf("decode pubkey: %w", err)
	}
	key, err := schnorr.ParsePubKey(keyBytes)
	if err != nil {
		return fmt.Errorf("parse pubkey: %w", err)
	}
	sigBytes, err := hex.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("decode sig: %w", err)
	}
	s, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("parse sig: %w", err)
	}
	if !s.Verify(hash, key) {
		return errSignatureMismatch
	}
	return nil
}

// Validator performs the integrity check of single events. It holds no
// mutable state; one Validator may be shared by any number of goroutines.
type Validator struct {
	verifier Verifier
}

// NewValidator returns a Validator using v for signature checks.
// A nil v selects SchnorrVerifier.
func NewValidator(v Verifier) *Validator {
	if v == nil {
		v = SchnorrVerifier{}
	}
	return &Validator{verifier: v}
}

var defaultValidator = NewValidator(nil)

// Validate checks ev with the default Schnorr verifier.
func Validate(ev Event) error {
	return defaultValidator.Validate(ev)
}

// Validate recomputes the canonical ID, compares it to the stated ID, then
// verifies the signature against that ID and the stated author key.
//
// Returns nil or a *ValidationError with ErrCodeTamperedID or
// ErrCodeBadSignature.
func (v *Validator) Validate(ev Event) error {
	computed := ev.CanonicalID()
	if computed != ev.ID {
		return tamperedID(ev.ID, computed)
	}
	if err := v.verifier.Verify(ev.ID, ev.PubKey, ev.Sig); err != nil {
		return badSignature(ev.ID, err)
	}
	return nil
}
