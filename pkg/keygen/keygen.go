// Package keygen provides the random-material generators behind realityctl:
// X25519 key pairs for the reality handshake, short identifiers, and client
// UUIDs. Generators are small interfaces so the stores stay testable without
// subprocess or network access.
package keygen

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/curve25519"
)

// DefaultShortIDLength is the number of hex characters in a generated short
// identifier. Xray accepts up to 16.
const DefaultShortIDLength = 16

// KeyPairGenerator produces an X25519 key pair encoded the way the proxy
// expects (unpadded URL-safe base64).
type KeyPairGenerator interface {
	Generate(ctx context.Context) (privateKey, publicKey string, err error)
}

// ShortIDGenerator produces lowercase hex tokens of the requested length.
type ShortIDGenerator interface {
	Generate(length int) (string, error)
}

// UUIDGenerator produces v4 UUID strings for client identifiers.
type UUIDGenerator interface {
	Generate() (string, error)
}

// Generators bundles the three generator kinds for injection into the store.
type Generators struct {
	Keys     KeyPairGenerator
	ShortIDs ShortIDGenerator
	UUIDs    UUIDGenerator
}

// Default returns the in-process generator suite: local X25519, crypto/rand
// short ids, and google/uuid identifiers.
func Default() Generators {
	return Generators{
		Keys:     X25519Generator{},
		ShortIDs: RandomShortIDs{},
		UUIDs:    RandomUUIDs{},
	}
}

// X25519Generator derives key pairs locally with curve25519. It fails closed:
// any failure of the system randomness source is surfaced, never papered over
// with a weaker substitute.
type X25519Generator struct{}

// Generate returns a fresh clamped X25519 private key and its public key,
// both in unpadded URL-safe base64 to match `xray x25519` output.
func (X25519Generator) Generate(_ context.Context) (string, string, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	// RFC 7748 clamping.
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive public key: %w", err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(priv), enc.EncodeToString(pub), nil
}

// RandomShortIDs generates short identifiers from crypto/rand.
type RandomShortIDs struct{}

// Generate returns a lowercase hex token of the given length (in characters).
// Zero or negative lengths fall back to DefaultShortIDLength.
func (RandomShortIDs) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultShortIDLength
	}
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf)[:length], nil
}

// RandomUUIDs generates v4 UUIDs.
type RandomUUIDs struct{}

func (RandomUUIDs) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return id.String(), nil
}
