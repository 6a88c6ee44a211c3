// Package auth produces the capability that every mutating exchange call
// requires: proof that the caller controls a key.
package auth

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	bc "github.com/krazyTry/launchpad-go/bonding_curve"
)

var ErrInvalidSignature = fmt.Errorf("invalid signature: %w", bc.ErrUnauthorized)

// Caller is an authenticated key. The zero value authenticates nobody.
type Caller struct {
	key solana.PublicKey
	ok  bool
}

// Authenticate verifies sig over message with key.
func Authenticate(key solana.PublicKey, message []byte, sig solana.Signature) (Caller, error) {
	if key.IsZero() {
		return Caller{}, fmt.Errorf("empty key: %w", bc.ErrUnauthorized)
	}
	if !sig.Verify(key, message) {
		return Caller{}, ErrInvalidSignature
	}
	return Caller{key: key, ok: true}, nil
}

// Assume trusts key without a signature, for hosts that verify signers
// themselves.
func Assume(key solana.PublicKey) Caller {
	if key.IsZero() {
		return Caller{}
	}
	return Caller{key: key, ok: true}
}

// Sign signs message with priv and authenticates the result.
func Sign(priv solana.PrivateKey, message []byte) (Caller, error) {
	sig, err := priv.Sign(message)
	if err != nil {
		return Caller{}, err
	}
	return Authenticate(priv.PublicKey(), message, sig)
}

func (c Caller) PublicKey() solana.PublicKey {
	return c.key
}

func (c Caller) IsZero() bool {
	return !c.ok
}

// Require fails unless c is authenticated.
func (c Caller) Require() error {
	if !c.ok {
		return fmt.Errorf("unauthenticated caller: %w", bc.ErrUnauthorized)
	}
	return nil
}

// RequireKey fails unless c is authenticated as key.
func (c Caller) RequireKey(key solana.PublicKey) error {
	if err := c.Require(); err != nil {
		return err
	}
	if !c.key.Equals(key) {
		return fmt.Errorf("%s is not %s: %w", c.key, key, bc.ErrUnauthorized)
	}
	return nil
}
