package keys

import (
	"errors"

	"github.com/earthbucks/earthbucks-go/internal/hash"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// Pkh is a payee hash: the double BLAKE3 of a compressed public key.
// Pay-to-hash scripts identify the payee by this value.
type Pkh struct {
	Buf [32]byte
}

// PkhFromPubKey derives the payee hash for pub.
func PkhFromPubKey(pub *PubKey) *Pkh {
	return &Pkh{Buf: hash.DoubleBlake3(pub.Buf[:])}
}

// PkhFromHex parses a 32-byte hex payee hash.
func PkhFromHex(s string) (*Pkh, error) {
	buf, err := ebxbuf.FromHex32(s)
	if err != nil {
		return nil, errors.New("invalid pkh")
	}
	return &Pkh{Buf: buf}, nil
}

// ToHex returns the canonical hex form.
func (p *Pkh) ToHex() string {
	return ebxbuf.ToHex(p.Buf[:])
}

// PkhKeyMap maps payee hashes to the key pairs that can sign for them.
type PkhKeyMap struct {
	m map[[32]byte]*KeyPair
}

// NewPkhKeyMap creates an empty map.
func NewPkhKeyMap() *PkhKeyMap {
	return &PkhKeyMap{m: make(map[[32]byte]*KeyPair)}
}

// Add registers a key pair under pkh.
func (pm *PkhKeyMap) Add(key *KeyPair, pkh [32]byte) {
	pm.m[pkh] = key
}

// Remove drops the entry for pkh.
func (pm *PkhKeyMap) Remove(pkh [32]byte) {
	delete(pm.m, pkh)
}

// Get returns the key pair for pkh, or nil.
func (pm *PkhKeyMap) Get(pkh [32]byte) *KeyPair {
	return pm.m[pkh]
}
