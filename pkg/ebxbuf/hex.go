package ebxbuf

import (
	"encoding/hex"
	"fmt"
)

// ToHex encodes bytes as lowercase hex. This is the canonical string form
// for every binary value in the protocol.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes a lowercase hex string.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

// FromHex32 decodes a hex string that must be exactly 32 bytes.
func FromHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := FromHex(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
