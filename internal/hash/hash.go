// Package hash wraps the cryptographic digests used throughout the
// protocol. BLAKE3 is the workhorse; SHA-256 survives only inside a
// legacy proof-of-work variant.
package hash

import (
	"crypto/sha256"

	"lukechampine.com/blake3"
)

// Blake3 computes the 32-byte BLAKE3 digest of buf.
func Blake3(buf []byte) [32]byte {
	return blake3.Sum256(buf)
}

// DoubleBlake3 computes BLAKE3(BLAKE3(buf)). Every object id in the
// protocol is a double hash of the canonical bytes.
func DoubleBlake3(buf []byte) [32]byte {
	first := blake3.Sum256(buf)
	return blake3.Sum256(first[:])
}

// Sha256 computes the SHA-256 digest of buf.
func Sha256(buf []byte) [32]byte {
	return sha256.Sum256(buf)
}

// Mac computes a keyed BLAKE3 MAC over buf.
func Mac(key [32]byte, buf []byte) [32]byte {
	h := blake3.New(32, key[:])
	h.Write(buf)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
