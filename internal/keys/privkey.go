// Package keys holds the secp256k1 primitives: private/public keys, the
// payee hash derived from a public key, compact ECDSA signatures, and
// ECDH shared secrets.
package keys

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// PrivKeySize is the byte length of a raw private key.
const PrivKeySize = 32

var errInvalidPrivKey = errors.New("invalid private key")

// PrivKey is a raw secp256k1 private key.
type PrivKey struct {
	Buf [PrivKeySize]byte
}

// NewPrivKey validates and wraps a raw 32-byte key.
func NewPrivKey(buf [PrivKeySize]byte) (*PrivKey, error) {
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetBytes(&buf)
	if overflow != 0 || scalar.IsZero() {
		return nil, errInvalidPrivKey
	}
	return &PrivKey{Buf: buf}, nil
}

// GeneratePrivKey creates a random private key.
func GeneratePrivKey() (*PrivKey, error) {
	priv, err := secp256k1.GeneratePrivateKeyFromRand(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	var buf [PrivKeySize]byte
	copy(buf[:], priv.Serialize())
	return &PrivKey{Buf: buf}, nil
}

// PrivKeyFromHex parses a 32-byte hex private key.
func PrivKeyFromHex(s string) (*PrivKey, error) {
	b, err := ebxbuf.FromHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != PrivKeySize {
		return nil, errInvalidPrivKey
	}
	var buf [PrivKeySize]byte
	copy(buf[:], b)
	return NewPrivKey(buf)
}

// ToHex returns the canonical hex form of the key.
func (k *PrivKey) ToHex() string {
	return ebxbuf.ToHex(k.Buf[:])
}

func (k *PrivKey) secp() *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(k.Buf[:])
}
