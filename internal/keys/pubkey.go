package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// PubKeySize is the byte length of a compressed public key.
const PubKeySize = 33

var errInvalidPubKey = errors.New("invalid public key")

// PubKey is a compressed secp256k1 public key.
type PubKey struct {
	Buf [PubKeySize]byte
}

// NewPubKey validates and wraps a compressed public key.
func NewPubKey(buf [PubKeySize]byte) (*PubKey, error) {
	if _, err := secp256k1.ParsePubKey(buf[:]); err != nil {
		return nil, errInvalidPubKey
	}
	return &PubKey{Buf: buf}, nil
}

// PubKeyFromPrivKey derives the compressed public key for priv.
func PubKeyFromPrivKey(priv *PrivKey) (*PubKey, error) {
	compressed := priv.secp().PubKey().SerializeCompressed()
	var buf [PubKeySize]byte
	copy(buf[:], compressed)
	return &PubKey{Buf: buf}, nil
}

// PubKeyFromHex parses a 33-byte hex compressed public key.
func PubKeyFromHex(s string) (*PubKey, error) {
	b, err := ebxbuf.FromHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != PubKeySize {
		return nil, errInvalidPubKey
	}
	var buf [PubKeySize]byte
	copy(buf[:], b)
	return NewPubKey(buf)
}

// ToHex returns the canonical hex form of the key.
func (k *PubKey) ToHex() string {
	return ebxbuf.ToHex(k.Buf[:])
}

func (k *PubKey) secp() (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(k.Buf[:])
}

// KeyPair couples a private key with its derived public key.
type KeyPair struct {
	PrivKey *PrivKey
	PubKey  *PubKey
}

// KeyPairFromPrivKey derives the full pair from priv.
func KeyPairFromPrivKey(priv *PrivKey) (*KeyPair, error) {
	pub, err := PubKeyFromPrivKey(priv)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PrivKey: priv, PubKey: pub}, nil
}

// GenerateKeyPair creates a random key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := GeneratePrivKey()
	if err != nil {
		return nil, err
	}
	return KeyPairFromPrivKey(priv)
}
