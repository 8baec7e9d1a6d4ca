package tx

import (
	"github.com/earthbucks/earthbucks-go/internal/script"
	"github.com/earthbucks/earthbucks-go/pkg/ebxbuf"
)

// TxOut is a spendable output: a value and the script that locks it.
type TxOut struct {
	Value  uint64
	Script *script.Script
}

// NewTxOut creates an output.
func NewTxOut(value uint64, s *script.Script) *TxOut {
	return &TxOut{Value: value, Script: s}
}

// ToBuf returns the canonical wire form.
func (out *TxOut) ToBuf() []byte {
	w := ebxbuf.NewWriter()
	w.WriteU64BE(out.Value)
	scriptBuf := out.Script.ToBuf()
	w.WriteVarInt(uint64(len(scriptBuf)))
	w.Write(scriptBuf)
	return w.Bytes()
}

// TxOutFromReader decodes an output.
func TxOutFromReader(r *ebxbuf.Reader) (*TxOut, error) {
	value, err := r.ReadU64BE()
	if err != nil {
		return nil, err
	}
	scriptLen, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	scriptBuf, err := r.Read(int(scriptLen))
	if err != nil {
		return nil, err
	}
	s, err := script.FromBuf(scriptBuf)
	if err != nil {
		return nil, err
	}
	return NewTxOut(value, s), nil
}

// TxOutFromBuf decodes an output spanning the entire buffer.
func TxOutFromBuf(buf []byte) (*TxOut, error) {
	return TxOutFromReader(ebxbuf.NewReader(buf))
}
