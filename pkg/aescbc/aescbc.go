// Package aescbc implements the AES-CBC encryption used for encrypted
// payloads: PKCS#7 padding, CBC chaining over a caller-supplied IV, and
// a keyed BLAKE3 MAC over the IV and ciphertext.
package aescbc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/earthbucks/earthbucks-go/internal/hash"
)

// BlockSize is the AES block size.
const BlockSize = aes.BlockSize

var (
	// ErrInvalidKeySize is returned for keys other than 16, 24, or 32
	// bytes.
	ErrInvalidKeySize = errors.New("invalid key size: expected 16, 24, or 32 bytes")

	// ErrInvalidIVSize is returned when the IV is not one block.
	ErrInvalidIVSize = errors.New("invalid iv size: expected 16 bytes")

	// ErrInvalidCiphertext is returned for ciphertexts that are empty or
	// not block-aligned, or whose padding is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrMacMismatch is returned when the authenticator does not match.
	ErrMacMismatch = errors.New("mac mismatch")
)

func pkcs7Pad(buf []byte) []byte {
	padLen := BlockSize - len(buf)%BlockSize
	out := make([]byte, len(buf)+padLen)
	copy(out, buf)
	for i := len(buf); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

func pkcs7Unpad(buf []byte) ([]byte, error) {
	if len(buf) == 0 || len(buf)%BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	padLen := int(buf[len(buf)-1])
	if padLen == 0 || padLen > BlockSize || padLen > len(buf) {
		return nil, ErrInvalidCiphertext
	}
	for _, b := range buf[len(buf)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidCiphertext
		}
	}
	return buf[:len(buf)-padLen], nil
}

func newCipher(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
		return aes.NewCipher(key)
	default:
		return nil, ErrInvalidKeySize
	}
}

// Encrypt pads plaintext and encrypts it in CBC mode under key and iv.
func Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != BlockSize {
		return nil, ErrInvalidIVSize
	}
	padded := pkcs7Pad(plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt reverses Encrypt, stripping the padding.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := newCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != BlockSize {
		return nil, ErrInvalidIVSize
	}
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	return pkcs7Unpad(padded)
}

// EncryptAuthenticated encrypts under a random IV and prepends a keyed
// BLAKE3 MAC over iv||ciphertext: mac(32) || iv(16) || ciphertext.
func EncryptAuthenticated(plaintext []byte, key [32]byte) ([]byte, error) {
	iv := make([]byte, BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}
	ciphertext, err := Encrypt(plaintext, key[:], iv)
	if err != nil {
		return nil, err
	}
	mac := hash.Mac(key, append(append([]byte(nil), iv...), ciphertext...))
	out := make([]byte, 0, 32+BlockSize+len(ciphertext))
	out = append(out, mac[:]...)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptAuthenticated checks the MAC and reverses
// EncryptAuthenticated.
func DecryptAuthenticated(data []byte, key [32]byte) ([]byte, error) {
	if len(data) < 32+BlockSize {
		return nil, ErrInvalidCiphertext
	}
	var mac [32]byte
	copy(mac[:], data[:32])
	rest := data[32:]
	if hash.Mac(key, rest) != mac {
		return nil, ErrMacMismatch
	}
	return Decrypt(rest[BlockSize:], key[:], rest[:BlockSize])
}
