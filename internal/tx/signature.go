package tx

import (
	"errors"

	"github.com/earthbucks/earthbucks-go/internal/keys"
)

// Hash-type flags carried in the first byte of a transaction signature.
const (
	SighashAll          = 0x01
	SighashNone         = 0x02
	SighashSingle       = 0x03
	SighashAnyoneCanPay = 0x80

	sighashBaseMask = 0x1f
)

// TxSignatureSize is the wire length: hash type plus compact r||s.
const TxSignatureSize = 1 + keys.SigSize

var errInvalidTxSignature = errors.New("invalid transaction signature")

// TxSignature is a compact ECDSA signature tagged with its hash type.
type TxSignature struct {
	HashType byte
	Sig      [keys.SigSize]byte
}

// NewTxSignature wraps a compact signature with a hash type.
func NewTxSignature(hashType byte, sig [keys.SigSize]byte) *TxSignature {
	return &TxSignature{HashType: hashType, Sig: sig}
}

// ToBuf returns the 65-byte wire form.
func (s *TxSignature) ToBuf() []byte {
	out := make([]byte, TxSignatureSize)
	out[0] = s.HashType
	copy(out[1:], s.Sig[:])
	return out
}

// TxSignatureFromBuf parses the 65-byte wire form.
func TxSignatureFromBuf(buf []byte) (*TxSignature, error) {
	if len(buf) != TxSignatureSize {
		return nil, errInvalidTxSignature
	}
	sig := &TxSignature{HashType: buf[0]}
	copy(sig.Sig[:], buf[1:])
	return sig, nil
}
