package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SigSize is the byte length of a compact r||s signature.
const SigSize = 64

var errInvalidSignature = errors.New("invalid signature")

// Sign produces a 64-byte compact r||s ECDSA signature over a 32-byte
// message digest. The nonce is derived deterministically (RFC 6979) and
// s is normalized to the low half of the curve order.
func Sign(msg [32]byte, priv *PrivKey) ([SigSize]byte, error) {
	var out [SigSize]byte
	compact := ecdsa.SignCompact(priv.secp(), msg[:], true)
	// SignCompact prefixes a recovery code byte; the wire form is r||s.
	copy(out[:], compact[1:])
	return out, nil
}

// Verify checks a 64-byte compact signature over a 32-byte digest
// against a compressed public key.
func Verify(sig [SigSize]byte, msg [32]byte, pub *PubKey) error {
	pubKey, err := pub.secp()
	if err != nil {
		return errInvalidPubKey
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return errInvalidSignature
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return errInvalidSignature
	}
	if !ecdsa.NewSignature(&r, &s).Verify(msg[:], pubKey) {
		return errInvalidSignature
	}
	return nil
}

// SharedSecret computes the ECDH shared secret pub x priv as a
// compressed point.
func SharedSecret(priv *PrivKey, pub *PubKey) ([]byte, error) {
	pubKey, err := pub.secp()
	if err != nil {
		return nil, errInvalidPubKey
	}
	var point, result secp256k1.JacobianPoint
	pubKey.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&priv.secp().Key, &point, &result)
	result.ToAffine()
	shared := secp256k1.NewPublicKey(&result.X, &result.Y)
	return shared.SerializeCompressed(), nil
}
